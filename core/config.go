package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string `mapstructure:"appName"`
		Env              string `mapstructure:"-"`
		Build            string `mapstructure:"build"`
		Debug            bool   `mapstructure:"debug"`
		TestMode         bool   `mapstructure:"testMode"`
		WorkDir          string `mapstructure:"workDir"`
		FrontendBaseURL  string `mapstructure:"frontendBaseURL"`
		DefaultFromEmail string `mapstructure:"defaultFromEmail"`
		SendgridApiKey   string `mapstructure:"sendgridApiKey"`
		RollbarToken     string `mapstructure:"rollbarToken"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
		Notify   NotifyConfig   `mapstructure:"notify"`
		Schedule ScheduleConfig `mapstructure:"schedule"`
	}

	ServerConfig struct {
		Address         string        `mapstructure:"address"`
		Host            string        `mapstructure:"host"`
		DebugHost       string        `mapstructure:"debugHost"`
		ReadTimeout     time.Duration `mapstructure:"readTimeout"`
		WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	}

	DatabaseConfig struct {
		Engine     string `mapstructure:"engine"` // postgres | sqlite
		Host       string `mapstructure:"host"`
		Port       string `mapstructure:"port"`
		Name       string `mapstructure:"name"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		DisableTLS bool   `mapstructure:"disableTLS"`
		Path       string `mapstructure:"path"` // sqlite only
	}

	NotifyConfig struct {
		Recipients       []string `mapstructure:"recipients"`
		DigestSchedule   string   `mapstructure:"digestSchedule"`
		DigestWindowDays int      `mapstructure:"digestWindowDays"`
	}

	ScheduleConfig struct {
		RecurrenceHorizon time.Duration `mapstructure:"recurrenceHorizon"`
	}
)

func (dbc DatabaseConfig) Address() string {
	if dbc.Port == "" {
		return dbc.Host
	}
	return dbc.Host + ":" + dbc.Port
}

// DefaultFromAddress parses DefaultFromEmail, falling back to a bare address on malformed input.
func (c *Config) DefaultFromAddress() mail.Address {
	if addr, err := mail.ParseAddress(c.DefaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

// NotifyAddresses returns the parsed clash notification recipients, skipping malformed ones.
// NewConfig rejects malformed recipients, so only hand-built configs lose any here.
func (c *Config) NotifyAddresses() []mail.Address {
	addrs := make([]mail.Address, 0, len(c.Notify.Recipients))
	for _, r := range c.Notify.Recipients {
		if addr, err := mail.ParseAddress(strings.TrimSpace(r)); err == nil {
			addrs = append(addrs, *addr)
		}
	}
	return addrs
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("appName", "Chuo")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("workDir", "")
	v.SetDefault("frontendBaseURL", "http://localhost:8080")
	v.SetDefault("defaultFromEmail", "Chuo <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "chuo")
	v.SetDefault("database.user", "chuo")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", filepath.Join("data", "chuo.db"))

	v.SetDefault("notify.recipients", []string{})
	v.SetDefault("notify.digestSchedule", "0 7 * * 1-5")
	v.SetDefault("notify.digestWindowDays", 7)

	v.SetDefault("schedule.recurrenceHorizon", 365*24*time.Hour)
}

// NewConfig loads the configuration for the environment named by $ENV:
// DEV (local; default), TEST, QA, PROD.
// Sources by precedence: env vars (prefixed by the env name), config/<env>.yaml, defaults.
// config/.env.<env> is loaded into the process env first when present.
//
// <ENV>_NOTIFY_RECIPIENTS is a comma-separated list of RFC 5322 addresses,
// e.g. "Registrar <registrar@example.edu>, dean@example.edu".
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(strings.TrimSpace(os.Getenv("ENV")))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "getting working directory")
	}
	v.SetDefault("workDir", wd)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(strings.ToLower(env))
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(wd, "config"))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	conf.Env = env

	if raw, ok := os.LookupEnv(env + "_NOTIFY_RECIPIENTS"); ok {
		conf.Notify.Recipients = splitList(raw)
	}
	for _, r := range conf.Notify.Recipients {
		if _, err := mail.ParseAddress(r); err != nil {
			return nil, errors.Wrapf(err, "parsing notify recipient %q", r)
		}
	}
	return conf, nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(raw string) []string {
	res := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
