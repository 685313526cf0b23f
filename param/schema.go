package param

// Field is one entry of the canonical parameter schema.
type Field struct {
	Key     string
	Default Value
}

// RequiredKeys are the minimum keys a scene/preset document must carry to be
// accepted. Presence is checked, not type.
var RequiredKeys = []string{
	"animationSpeed",
	"movementAmplitude",
	"gridWidth",
	"gridHeight",
}

// DefaultSchema is the canonical parameter set of the generator, in display
// order. Every store starts from these keys; anything else needs explicit
// registration.
func DefaultSchema() []Field {
	return []Field{
		// animation
		{"animationSpeed", Number(1.0)},
		{"animationType", Enum("pulse")},
		{"movementAmplitude", Number(0.12)},
		{"rotationAmplitude", Number(0.5)},
		{"scaleAmplitude", Number(0.3)},

		// grid
		{"gridWidth", Int(8)},
		{"gridHeight", Int(8)},
		{"cellSize", Number(1.0)},
		{"compositionWidth", Int(28)},
		{"compositionHeight", Int(28)},
		{"showGrid", Bool(true)},
		{"gridColor", MustColor("#333333")},

		// shapes
		{"shapeColor", MustColor("#00ffcc")},
		{"backgroundColor", MustColor("#000000")},
		{"randomness", Number(0.5)},
		{"shapeCycling", Bool(false)},
		{"shapeCyclingDivision", Enum("1/4")},
		{"enabledBasic", Bool(true)},
		{"enabledTriangles", Bool(true)},
		{"enabledRectangles", Bool(true)},
		{"enabledEllipses", Bool(false)},

		// morphing
		{"morphDuration", Number(0.5)},
		{"morphEasing", Enum("inOutCubic")},

		// sphere / post
		{"sphereRefraction", Number(0.9)},
		{"sphereTransparency", Number(0.5)},
		{"postBloom", Bool(false)},
		{"bloomStrength", Number(0.4)},

		// reactivity
		{"audioReactivity", Number(0.0)},
		{"audioSmoothing", Number(0.8)},
		{"midiSensitivity", Number(1.0)},
	}
}
