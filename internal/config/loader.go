package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
)

// Legacy environment names kept working next to the MONOPARTS_<SECTION>_<KEY> form.
var envAliases = map[string][]string{
	"environment":               {"MONOPARTS_ENV"},
	"production_url":            {"MONOPARTS_PROD_URL"},
	"merchant.store_id":         {"MONOPARTS_STORE_ID"},
	"merchant.signature_secret": {"MONOPARTS_SIGNATURE_SECRET"},
	"merchant.broker_id":        {"MONOPARTS_BROKER_ID"},
	"signature.driver":          {"MONOPARTS_SIGNATURE_DRIVER"},
	"signature.algo":            {"MONOPARTS_SIGNATURE_ALGO"},
	"signature.header":          {"MONOPARTS_SIGNATURE_HEADER"},
	"headers.store":             {"MONOPARTS_STORE_ID_HEADER"},
	"headers.broker":            {"MONOPARTS_BROKER_ID_HEADER"},
	"callbacks.path":            {"MONOPARTS_CALLBACK_PATH"},
	"logging.level":             {"MONOPARTS_LOG_LEVEL"},
	"server.port":               {"PORT"},
}

// Load merges defaults, the optional YAML file at path and MONOPARTS_*
// environment variables, then validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("MONOPARTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		canonical := "MONOPARTS_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		args := append([]string{key, canonical}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, apperr.NewConfigurationError("binding env for %s: %v", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, apperr.NewConfigurationError("reading %s: %v", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperr.NewConfigurationError("decoding config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("environment", string(d.Environment))
	for env, url := range d.BaseURLs {
		v.SetDefault("base_urls."+env, url)
	}
	v.SetDefault("production_url", d.ProductionURL)

	v.SetDefault("merchant.store_id", d.Merchant.StoreID)
	v.SetDefault("merchant.signature_secret", d.Merchant.SignatureSecret)
	v.SetDefault("merchant.broker_id", d.Merchant.BrokerID)

	v.SetDefault("signature.driver", d.Signature.Driver)
	v.SetDefault("signature.algo", d.Signature.Algo)
	v.SetDefault("signature.header", d.Signature.Header)
	v.SetDefault("signature.private_key_file", d.Signature.PrivateKeyFile)
	v.SetDefault("signature.public_key_file", d.Signature.PublicKeyFile)

	v.SetDefault("headers.store", d.Headers.Store)
	v.SetDefault("headers.broker", d.Headers.Broker)

	v.SetDefault("callbacks.enabled", d.Callbacks.Enabled)
	v.SetDefault("callbacks.path", d.Callbacks.Path)

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.rate_limit_rps", d.HTTP.RateLimitRPS)
	v.SetDefault("http.rate_limit_burst", d.HTTP.RateLimitBurst)
	v.SetDefault("http.breaker_enabled", d.HTTP.BreakerEnabled)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("redis.url", d.Redis.URL)
	v.SetDefault("redis.channel", d.Redis.Channel)
	v.SetDefault("forward.url", d.Forward.URL)
	v.SetDefault("forward.secret", d.Forward.Secret)
}
