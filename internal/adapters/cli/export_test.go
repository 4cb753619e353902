package cli

var (
	TuningFromConfig = tuningFromConfig
	MaskPassword     = maskPassword
	ParseEntity      = parseEntity
)
