package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"prepkit.db"`

	Razorpay Razorpay `envPrefix:"RAZORPAY_"`
	SMTP     SMTP     `envPrefix:"SMTP_"`
	Drive    Drive    `envPrefix:"DRIVE_"`
	Admin    Admin    `envPrefix:"ADMIN_"`
	Worker   Worker   `envPrefix:"WORKER_"`

	// Static planName -> Drive folder id map, e.g.
	// "JS Interview Preparation Kit:1AbC...,DSA Interview Preparation Kit:2DeF..."
	PlanFolders map[string]string `env:"PLAN_FOLDERS"`
}

type Razorpay struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://api.razorpay.com"`
	KeyID         string `env:"KEY_ID"`
	KeySecret     string `env:"KEY_SECRET"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type SMTP struct {
	Host        string `env:"HOST"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	From        string `env:"FROM"`
	SendDelayMS int    `env:"SEND_DELAY_MS" envDefault:"50"`
}

type Drive struct {
	BaseApiURL      string `env:"BASE_API_URL" envDefault:"https://www.googleapis.com/drive/v3"`
	CredentialsFile string `env:"CREDENTIALS_FILE" envDefault:"service-account.json"`
}

type Admin struct {
	APIKey string `env:"API_KEY"`
}

type Worker struct {
	IntervalSeconds int `env:"INTERVAL_SECONDS" envDefault:"5"`
	BatchSize       int `env:"BATCH_SIZE" envDefault:"20"`
	MaxAttempts     int `env:"MAX_ATTEMPTS" envDefault:"5"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
