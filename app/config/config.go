package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	DB     *sql.DB
	Port   string
	JWT    JWTConfig
	Policy FeePolicy
	// Shared secret the payment gateway sends with every webhook.
	WebhookSecret string
}

type JWTConfig struct {
	Secret string
}

// FeePolicy holds the tunable knobs of the billing engines. It is loaded
// once at startup and passed explicitly into the engines so they never
// reach for hidden settings rows.
type FeePolicy struct {
	// Days past due before an installment shows up in a defaulter sweep.
	DefaulterThresholdDays int
	// Escalation level cap and the levels at which holds kick in.
	MaxEscalationLevel int
	TCHoldLevel        int
	ExamDebarLevel     int
	// Gap between consecutive installment due dates.
	InstallmentGapDays int
	// Days before the due date that payment reminders go out.
	ReminderLeadDays int
	// Hour of day (local time) the background sweeps fire.
	SweepHour int
}

var AppConfig *Config

// Load reads .env (if present) and environment variables, opens the
// database pool and assembles the runtime configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "dev-only-secret"),
		},
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		Policy: FeePolicy{
			DefaulterThresholdDays: getEnvInt("DEFAULTER_THRESHOLD_DAYS", 30),
			MaxEscalationLevel:     getEnvInt("MAX_ESCALATION_LEVEL", 4),
			TCHoldLevel:            getEnvInt("TC_HOLD_LEVEL", 2),
			ExamDebarLevel:         getEnvInt("EXAM_DEBAR_LEVEL", 3),
			InstallmentGapDays:     getEnvInt("INSTALLMENT_GAP_DAYS", 90),
			ReminderLeadDays:       getEnvInt("REMINDER_LEAD_DAYS", 3),
			SweepHour:              getEnvInt("SWEEP_HOUR", 20),
		},
	}

	cfg.DB = initDB()
	AppConfig = cfg
	return cfg
}

func initDB() *sql.DB {
	psqlInfo := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_NAME", "school_fees"),
		getEnv("DB_SSLMODE", "disable"),
	)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err = db.Ping(); err != nil {
		log.Fatal("Cannot establish database connection: ", err)
	}

	Logger().Infow("database connected",
		"host", getEnv("DB_HOST", "localhost"),
		"db", getEnv("DB_NAME", "school_fees"))
	return db
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

func Policy() FeePolicy {
	return AppConfig.Policy
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
