package mailsink

// Defaults applied by ResolveConfig.
const (
	DefaultOutputDir        = "./localemail"
	DefaultFileNameTemplate = "%ts_%s"
)

// IgnoreCreateFiles holds per-format suppression overrides. A nil field
// keeps the default.
type IgnoreCreateFiles struct {
	Text *bool
	HTML *bool
	JSON *bool
}

// Options is a partial configuration; zero values fall back to defaults.
type Options struct {
	OutputDir         string
	FileNameTemplate  string
	IgnoreCreateFiles IgnoreCreateFiles
}

// Suppress reports which artifact files are skipped.
type Suppress struct {
	Text bool
	HTML bool
	JSON bool
}

// Config is the fully resolved, immutable mailer configuration.
type Config struct {
	OutputDir        string
	FileNameTemplate string
	Suppress         Suppress
}

// ResolveConfig fills every unset option with its default. The template is
// not validated: unknown placeholders pass through literally.
func ResolveConfig(o Options) Config {
	cfg := Config{
		OutputDir:        DefaultOutputDir,
		FileNameTemplate: DefaultFileNameTemplate,
		Suppress:         Suppress{Text: false, HTML: false, JSON: true},
	}

	if o.OutputDir != "" {
		cfg.OutputDir = o.OutputDir
	}
	if o.FileNameTemplate != "" {
		cfg.FileNameTemplate = o.FileNameTemplate
	}
	if o.IgnoreCreateFiles.Text != nil {
		cfg.Suppress.Text = *o.IgnoreCreateFiles.Text
	}
	if o.IgnoreCreateFiles.HTML != nil {
		cfg.Suppress.HTML = *o.IgnoreCreateFiles.HTML
	}
	if o.IgnoreCreateFiles.JSON != nil {
		cfg.Suppress.JSON = *o.IgnoreCreateFiles.JSON
	}

	return cfg
}

// Bool returns a pointer to b, for building IgnoreCreateFiles literals.
func Bool(b bool) *bool {
	return &b
}
