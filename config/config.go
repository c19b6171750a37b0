package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server    Server
	Database  Database
	Redis     Redis
	Auth      Auth
	Stripe    Stripe
	DocRaptor DocRaptor
	AWS       AWS
	SendGrid  SendGrid
	App       App
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Auth struct {
	JWTSecret     string
	TokenTTLHours int
}

type Stripe struct {
	SecretKey     string
	WebhookSecret string
	// ReportPriceMinor is the one-time Final Report price in minor units.
	ReportPriceMinor int64
	Currency         string
	// TaxCodeFinalReport is the Stripe Tax product tax code for the report.
	// The placeholder txcd_99999999 disables tax calculation.
	TaxCodeFinalReport string
}

type DocRaptor struct {
	APIKey string
	// Test renders free watermarked documents.
	Test bool
}

type AWS struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

type SendGrid struct {
	APIKey    string
	FromEmail string
	FromName  string
	// Dynamic template ids, managed in the SendGrid dashboard.
	TemplateInvite       string
	TemplateSubmitThanks string
	TemplateAdminAlert   string
	TemplateReceipt      string
}

type App struct {
	// BaseURL is used to build participant survey links in invite emails.
	BaseURL string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("AUTH_TOKEN_TTL_HOURS", 72)
	viper.SetDefault("STRIPE_REPORT_PRICE_MINOR", 19900)
	viper.SetDefault("STRIPE_CURRENCY", "cad")
	viper.SetDefault("DOCRAPTOR_TEST", true)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.TokenTTLHours = viper.GetInt("AUTH_TOKEN_TTL_HOURS")

	config.Stripe.SecretKey = viper.GetString("STRIPE_SECRET_KEY")
	config.Stripe.WebhookSecret = viper.GetString("STRIPE_WEBHOOK_SECRET")
	config.Stripe.ReportPriceMinor = viper.GetInt64("STRIPE_REPORT_PRICE_MINOR")
	config.Stripe.Currency = viper.GetString("STRIPE_CURRENCY")
	config.Stripe.TaxCodeFinalReport = viper.GetString("STRIPE_TAX_CODE_FINAL_REPORT")

	config.DocRaptor.APIKey = viper.GetString("DOCRAPTOR_API_KEY")
	config.DocRaptor.Test = viper.GetBool("DOCRAPTOR_TEST")

	config.AWS.Region = viper.GetString("AWS_S3_REGION_NAME")
	config.AWS.AccessKeyID = viper.GetString("AWS_ACCESS_KEY_ID")
	config.AWS.SecretAccessKey = viper.GetString("AWS_SECRET_ACCESS_KEY")
	config.AWS.Bucket = viper.GetString("AWS_STORAGE_BUCKET_NAME")

	config.SendGrid.APIKey = viper.GetString("SENDGRID_API_KEY")
	config.SendGrid.FromEmail = viper.GetString("DEFAULT_FROM_EMAIL")
	config.SendGrid.FromName = viper.GetString("DEFAULT_FROM_NAME")
	config.SendGrid.TemplateInvite = viper.GetString("SENDGRID_TEMPLATE_INVITE")
	config.SendGrid.TemplateSubmitThanks = viper.GetString("SENDGRID_TEMPLATE_SUBMIT_THANKS")
	config.SendGrid.TemplateAdminAlert = viper.GetString("SENDGRID_TEMPLATE_ADMIN_ALERT")
	config.SendGrid.TemplateReceipt = viper.GetString("SENDGRID_TEMPLATE_RECEIPT")

	config.App.BaseURL = viper.GetString("APP_BASE_URL")

	log.Info().Str("port", config.Server.Port).Str("db", config.Database.Name).Msg("Config loaded")
	return &config, nil
}
