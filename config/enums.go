package config

//go:generate go tool go-enum --marshal --names

// Specification of requested output format.
// ENUM(css, yaml)
type OutputFormat int

// Ext returns file extension for output format.
func (o OutputFormat) Ext() string {
	switch o {
	case OutputFormatCss:
		return ".css"
	case OutputFormatYaml:
		return ".yaml"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
