package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/surveypro/saas-backend/api"
	"github.com/surveypro/saas-backend/auth"
	"github.com/surveypro/saas-backend/db"
	"github.com/surveypro/saas-backend/internal"
	"github.com/surveypro/saas-backend/notifications"
	"github.com/surveypro/saas-backend/notifications/smtp"
	"github.com/surveypro/saas-backend/objectstorage"
	"github.com/surveypro/saas-backend/session"
	"github.com/surveypro/saas-backend/stripe"
	"github.com/surveypro/saas-backend/subscriptions"
	"github.com/surveypro/saas-backend/surveys"
	"github.com/surveypro/saas-backend/users"
	"go.vocdoni.io/dvote/log"
)

func main() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.StringP("secret", "s", "", "API secret, a random one is generated if empty")
	flag.String("logLevel", "info", "log level (debug, info, warn, error)")
	flag.String("webURL", "http://localhost:5173", "public URL of the web app")
	flag.String("storage", "local", "storage backend (local, mongo, redis, s3)")
	flag.String("dataDir", filepath.Join(home, ".surveypro"), "data directory of the local storage")
	flag.String("mongoURL", "", "the URL of the MongoDB server")
	flag.String("mongoDB", "surveypro", "the name of the MongoDB database")
	flag.String("redisAddr", "localhost:6379", "address of the Redis server")
	flag.String("redisPassword", "", "password of the Redis server")
	flag.Int("redisDB", 0, "Redis database number")
	flag.String("s3Endpoint", "", "endpoint of the S3 compatible object storage")
	flag.String("s3Region", "us-east-1", "region of the object storage")
	flag.String("s3AccessKey", "", "access key of the object storage")
	flag.String("s3SecretKey", "", "secret key of the object storage")
	flag.String("s3Bucket", "surveypro", "bucket of the object storage")
	flag.Int("s3CacheSize", 128, "number of snapshots kept in the object storage read cache")
	flag.String("auth", "demo", "authentication mode (demo accepts any password, bcrypt checks hashed passwords)")
	flag.String("seedPassword", "", "password given to the seed accounts without one in bcrypt mode")
	flag.String("payment", "simulated", "payment processor (simulated, stripe)")
	flag.Duration("paymentDelay", subscriptions.DefaultPaymentDelay, "processing time of the simulated payments")
	flag.String("stripeApiSecret", "", "Stripe API secret")
	flag.String("stripeWebhookSecret", "", "Stripe webhook secret")
	flag.String("stripeCurrency", stripe.DefaultCurrency, "currency the packages are charged in")
	flag.String("emailFromAddress", "", "email address the reward notifications are sent from")
	flag.String("emailFromName", "SurveyPro", "name the reward notifications are sent from")
	flag.String("smtpServer", "", "SMTP server, reward notifications are disabled if empty")
	flag.Int("smtpPort", 587, "SMTP port")
	flag.String("smtpUsername", "", "SMTP username")
	flag.String("smtpPassword", "", "SMTP password")
	flag.Bool("trackCompletions", false, "record completed surveys on the account of logged users")
	flag.Int("takingSessions", api.DefaultTakingSessions, "number of survey taking sessions kept in memory")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("SURVEYPRO")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	log.Init(viper.GetString("logLevel"), "stdout", nil)

	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	webURL := strings.TrimSuffix(viper.GetString("webURL"), "/")
	secret := viper.GetString("secret")
	if secret == "" {
		secret = internal.RandomHex(32)
		log.Warnw("no API secret configured, tokens will not survive a restart")
	}

	// initialize the storage
	storage, err := newStorage(viper.GetString("storage"))
	if err != nil {
		log.Fatalf("could not initialize the storage: %v", err)
	}
	defer storage.Close()
	authenticator, err := newAuthenticator(viper.GetString("auth"), storage)
	if err != nil {
		log.Fatalf("could not initialize the authenticator: %v", err)
	}
	sess := session.New(storage)
	surveyStore := surveys.New(&surveys.Config{
		Storage:       storage,
		Session:       sess,
		Authenticator: authenticator,
	})
	userStore := users.New(&users.Config{
		Storage:       storage,
		Session:       sess,
		Authenticator: authenticator,
	})
	if hashes, ok := authenticator.(*auth.Bcrypt); ok {
		seedCredentials(hashes, surveyStore, userStore, viper.GetString("seedPassword"))
	}

	// payments
	var stripeService *stripe.Service
	var processor subscriptions.PaymentProcessor
	switch viper.GetString("payment") {
	case "simulated":
		processor = &subscriptions.Simulated{Delay: viper.GetDuration("paymentDelay")}
	case "stripe":
		apiSecret := viper.GetString("stripeApiSecret")
		webhookSecret := viper.GetString("stripeWebhookSecret")
		if apiSecret == "" || webhookSecret == "" {
			log.Fatal("the stripe API and webhook secrets are required by the stripe payment processor")
		}
		stripeService, err = stripe.NewService(&stripe.Config{
			APIKey:        apiSecret,
			WebhookSecret: webhookSecret,
			Currency:      viper.GetString("stripeCurrency"),
			SuccessURL:    webURL + "/dashboard",
			CancelURL:     webURL + "/pricing",
		}, surveyStore)
		if err != nil {
			log.Fatalf("could not create the stripe service: %v", err)
		}
		processor = stripeService
	default:
		log.Fatalf("unknown payment processor %q", viper.GetString("payment"))
	}

	// reward notifications
	var mailService notifications.NotificationService
	if smtpServer := viper.GetString("smtpServer"); smtpServer != "" {
		mailService = new(smtp.Email)
		if err := mailService.New(&smtp.Config{
			FromName:     viper.GetString("emailFromName"),
			FromAddress:  viper.GetString("emailFromAddress"),
			SMTPServer:   smtpServer,
			SMTPPort:     viper.GetInt("smtpPort"),
			SMTPUsername: viper.GetString("smtpUsername"),
			SMTPPassword: viper.GetString("smtpPassword"),
		}); err != nil {
			log.Fatalf("could not create the email service: %v", err)
		}
		log.Infow("email service created", "from", viper.GetString("emailFromAddress"))
	}

	// create the API server
	server, err := api.New(&api.Config{
		Host:    host,
		Port:    port,
		Secret:  secret,
		Surveys: surveyStore,
		Users:   userStore,
		Subscriptions: subscriptions.New(&subscriptions.Config{
			DB:        surveyStore,
			Processor: processor,
		}),
		Stripe:           stripeService,
		MailService:      mailService,
		WebAppURL:        webURL,
		TrackCompletions: viper.GetBool("trackCompletions"),
		TakingSessions:   viper.GetInt("takingSessions"),
	})
	if err != nil {
		log.Fatalf("could not create the API server: %v", err)
	}
	server.Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port, "storage", viper.GetString("storage"),
		"payment", viper.GetString("payment"))
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Infow("shutting down")
}

// newStorage opens the storage backend named by kind with the parameters
// of the configuration.
func newStorage(kind string) (db.Storage, error) {
	switch kind {
	case "local":
		return db.NewLocalStorage(viper.GetString("dataDir"))
	case "mongo":
		return db.NewMongoStorage(viper.GetString("mongoURL"), viper.GetString("mongoDB"))
	case "redis":
		return db.NewRedisStorage(viper.GetString("redisAddr"), viper.GetString("redisPassword"),
			viper.GetInt("redisDB"))
	case "s3":
		return objectstorage.New(&objectstorage.Config{
			Endpoint:  viper.GetString("s3Endpoint"),
			Region:    viper.GetString("s3Region"),
			AccessKey: viper.GetString("s3AccessKey"),
			SecretKey: viper.GetString("s3SecretKey"),
			Bucket:    viper.GetString("s3Bucket"),
			CacheSize: viper.GetInt("s3CacheSize"),
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

func newAuthenticator(mode string, storage db.Storage) (auth.Authenticator, error) {
	switch mode {
	case "demo":
		return auth.EmailOnly{}, nil
	case "bcrypt":
		return auth.NewBcrypt(storage, 0)
	default:
		return nil, fmt.Errorf("unknown authentication mode %q", mode)
	}
}

// seedCredentials gives the accounts without a password hash, the seed
// ones on a fresh storage, the configured seed password. Without one they
// can not login, which is only logged.
func seedCredentials(hashes *auth.Bcrypt, surveyStore *surveys.Store, userStore *users.Store, password string) {
	var accounts []string
	for _, company := range surveyStore.Companies() {
		accounts = append(accounts, auth.AccountID(surveys.CompanyAccount, company.Email))
	}
	for _, user := range userStore.Users() {
		accounts = append(accounts, auth.AccountID(users.UserAccount, user.Email))
	}
	if password == "" {
		if missing := hashes.Missing(accounts...); len(missing) > 0 {
			log.Warnw("accounts without password can not login, set seedPassword to enable them",
				"accounts", missing)
		}
		return
	}
	seeded, err := hashes.Seed(password, accounts...)
	if err != nil {
		log.Fatalf("could not seed account passwords: %v", err)
	}
	if seeded > 0 {
		log.Infow("seed account passwords set", "accounts", seeded)
	}
}
