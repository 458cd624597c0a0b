// Package config loads service configuration from a YAML file, a .env file
// and the process environment.
//
// Files are searched in the usual places (./config.yml, ./cmd/<service>/,
// ./config/, the user config dir) unless given explicitly. Environment
// variables carrying the service prefix override file values, with the
// prefix stripped and underscores mapped onto nested keys:
//
//	APIKIT_HTTP_BASE_URL=https://api.example.com  ->  http.base_url
//
// Services embed ServiceConfig in their own config struct:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    HTTP httpclient.Config `yaml:"http" mapstructure:"http"`
//	}
//
//	var cfg Config
//	err := config.LoadConfig("apikit", &cfg)
package config
