package config

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/notification"
)

// Storage drivers
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config holds the project config values
type Config struct {
	Env          string `yaml:"env"`
	Driver       string `yaml:"dbDriver"`
	URL          string `yaml:"dbUri"`
	DatabaseName string `yaml:"dbName"`
	SQLitePath   string `yaml:"sqlitePath"`
	BaseURL      string `yaml:"baseUrl"`
	Port         string `yaml:"port"`

	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTtl"`

	SendGridAPIKey   string `yaml:"sendgridApiKey"`
	MailFromName     string `yaml:"mailFromName"`
	MailFromAddress  string `yaml:"mailFromAddress"`
	DeliverySchedule string `yaml:"deliverySchedule"`

	CloudinaryCloudName    string `yaml:"cloudinaryCloudName"`
	CloudinaryAPIKey       string `yaml:"cloudinaryApiKey"`
	CloudinaryAPISecret    string `yaml:"cloudinaryApiSecret"`
	CloudinaryUploadPreset string `yaml:"cloudinaryUploadPreset"`

	// Recipients maps user ids to email recipients, only read from the config file
	Recipients notification.StaticDirectory `yaml:"recipients"`
}

// New sets up all config related services
func New() *Config {
	env := os.Getenv("ENV")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		Env:                    env,
		Driver:                 getenv("DB_DRIVER", DriverSQLite),
		URL:                    os.Getenv("DB_URI"),
		DatabaseName:           os.Getenv("DB_NAME"),
		SQLitePath:             getenv("SQLITE_PATH", "data/satgas-ppk.db"),
		BaseURL:                os.Getenv("BASE_URL"),
		Port:                   getenv("PORT", "8080"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		TokenTTL:               12 * time.Hour,
		SendGridAPIKey:         os.Getenv("SENDGRID_API_KEY"),
		MailFromName:           getenv("MAIL_FROM_NAME", "Satgas PPK"),
		MailFromAddress:        os.Getenv("MAIL_FROM_ADDRESS"),
		DeliverySchedule:       getenv("DELIVERY_SCHEDULE", "@every 1m"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadPreset: os.Getenv("CLOUDINARY_UPLOAD_PRESET"),
		Recipients:             notification.StaticDirectory{},
	}
}

// Load reads the environment and then overlays the YAML file named by CONFIG_FILE
func Load() (*Config, error) {
	conf := New()
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		return conf, nil
	}
	if err := conf.Overlay(path); err != nil {
		return nil, err
	}
	return conf, nil
}

// Overlay decodes the YAML file at path over conf. Keys missing from the file keep
// their current values.
func (c *Config) Overlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	if c.Recipients == nil {
		c.Recipients = notification.StaticDirectory{}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().Errorw(message, "status", httpStatusCode, "error", err)
	resp := models.ErrorMessageResponse{Response: models.MessageError{Message: message}}
	if err != nil {
		resp.Response.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
