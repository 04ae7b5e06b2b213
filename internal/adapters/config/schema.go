package config

const currentSchemaVersion = 1

// fileSchema is what `config init` writes. Loading goes through viper and
// reads the same keys.
type fileSchema struct {
	Version int          `toml:"version"`
	Twilio  twilioSchema `toml:"twilio" comment:"Twilio credentials. TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN override these."`
	API     apiSchema    `toml:"api"`
	Fetch   fetchSchema  `toml:"fetch"`
	Filter  filterSchema `toml:"filter"`
	Server  serverSchema `toml:"server"`
}

type twilioSchema struct {
	AccountSID string `toml:"account_sid"`
	AuthToken  string `toml:"auth_token"`
}

type apiSchema struct {
	BaseURL           string  `toml:"base_url"`
	PageSize          int     `toml:"page_size" comment:"Messages per page, at most 1000."`
	RequestsPerSecond float64 `toml:"requests_per_second" comment:"Page request pacing, 0 disables it."`
	Timeout           string  `toml:"timeout"`
}

type fetchSchema struct {
	MaxAgeDays  int `toml:"max_age_days" comment:"Oldest start date accepted, in days before today."`
	DefaultDays int `toml:"default_days"`
}

type filterSchema struct {
	MaxRecipients int `toml:"max_recipients"`
}

type serverSchema struct {
	Listen string `toml:"listen"`
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		Version: currentSchemaVersion,
		Twilio: twilioSchema{
			AccountSID: cfg.Credentials.AccountSID,
			AuthToken:  cfg.Credentials.AuthToken,
		},
		API: apiSchema{
			BaseURL:           cfg.API.BaseURL,
			PageSize:          cfg.API.PageSize,
			RequestsPerSecond: cfg.API.RequestsPerSecond,
			Timeout:           cfg.API.Timeout.String(),
		},
		Fetch: fetchSchema{
			MaxAgeDays:  cfg.Fetch.MaxAgeDays,
			DefaultDays: cfg.Fetch.DefaultDays,
		},
		Filter: filterSchema{MaxRecipients: cfg.Filter.MaxRecipients},
		Server: serverSchema{Listen: cfg.Server.Listen},
	}
}
