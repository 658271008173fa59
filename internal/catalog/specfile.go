package catalog

// specFile is the on-disk shape of one declarative pattern specification.
// Lists are used wherever declaration order matters (events, captures)
// since a YAML mapping does not preserve key order through yaml.v3's
// default map decoding.
type specFile struct {
	Object    string            `yaml:"object"`
	Platforms []platformSpec    `yaml:"platforms"`
	Events    []eventSpec       `yaml:"events"`
}

type platformSpec struct {
	Name             string          `yaml:"name"`
	VersionRegex     string          `yaml:"version_regex"`
	TimestampRegex   string          `yaml:"timestamp_regex"`
	FullTimestamp    bool            `yaml:"full_timestamp"`
	TimestampFormats []string        `yaml:"timestamp_formats"`
	DomainRegex      string          `yaml:"domain_regex"`
	LevelRegex       string          `yaml:"level_regex"`
	LevelNames       levelNamesSpec  `yaml:"level_names"`
}

type levelNamesSpec struct {
	Error   string `yaml:"error"`
	Warn    string `yaml:"warn"`
	Info    string `yaml:"info"`
	Verbose string `yaml:"verbose"`
	Debug   string `yaml:"debug"`
}

type eventSpec struct {
	Key      string         `yaml:"key"`
	Regex    string         `yaml:"regex"`
	Captures []captureField `yaml:"captures"`
	Ignore   bool           `yaml:"ignore"`
}

type captureField struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default any    `yaml:"default"`
}

// parseCaptureKind maps a spec file's type string to a CaptureKind.
func parseCaptureKind(s string) (CaptureKind, error) {
	switch s {
	case "bool":
		return CaptureBool, nil
	case "char":
		return CaptureChar, nil
	case "int":
		return CaptureInt, nil
	case "hex_int":
		return CaptureHexInt, nil
	case "float":
		return CaptureFloat, nil
	case "string":
		return CaptureString, nil
	case "optional_int":
		return CaptureOptionalInt, nil
	case "optional_string":
		return CaptureOptionalString, nil
	case "defaulted_int":
		return CaptureDefaultedInt, nil
	case "defaulted_float":
		return CaptureDefaultedFloat, nil
	case "defaulted_string":
		return CaptureDefaultedString, nil
	default:
		return 0, errUnknownCaptureType(s)
	}
}

type errUnknownCaptureType string

func (e errUnknownCaptureType) Error() string {
	return "catalog: unknown capture type " + string(e)
}
