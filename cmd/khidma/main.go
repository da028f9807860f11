package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"khidma/internal/cache"
	"khidma/internal/config"
	"khidma/internal/controller"
	"khidma/internal/domain"
	"khidma/internal/events"
	"khidma/internal/export"
	"khidma/internal/gateway"
	"khidma/internal/logging"
	"khidma/internal/metrics"
	"khidma/internal/models"
	"khidma/internal/session"
)

const usage = `usage: khidma [flags] <command> [args]

commands:
  login <email> <password>
  register <name> <email> <password> <role>
  reset-password <email>
  services [query]
  categories
  book <serviceId> <date> <time> <address>
  bookings
  cancel <bookingId>
  complete <bookingId>
  review <reservationId> <rating> <comment>
  provider-services
  provider-bookings
  accept <bookingId>
  reject <bookingId>
  reviews
  export

flags:
  -config path   config file (default configs/config.yaml)
  -user id       act as this user id (as printed by login)
  -role role     customer or provider
`

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file path")
	userID := flag.String("user", "", "user id for session-scoped commands")
	role := flag.String("role", "", "session role: customer or provider")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("missing command")
	}

	cfg, logger, closer, err := loadConfigAndLogger(*configPath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewEventBus()
	gw := buildGateway(cfg, logger)
	sessions := session.NewManager(eventBus)
	if *userID != "" {
		sessions.Establish(session.Session{UserID: *userID, Role: *role})
	}

	app := &cli{
		ctx:      ctx,
		cfg:      cfg,
		logger:   logger,
		gw:       gw,
		sessions: sessions,
		bus:      eventBus,
	}
	return app.dispatch(flag.Arg(0), flag.Args()[1:])
}

func loadConfigAndLogger(configPath string) (*config.Config, *zerolog.Logger, io.Closer, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}

func buildGateway(cfg *config.Config, logger *zerolog.Logger) *gateway.Client {
	gw := gateway.New(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, logger)
	if cfg.API.RateLimit.Enabled {
		gw.UseRateLimit(cfg.API.RateLimit.RPS, cfg.API.RateLimit.Burst)
	}
	if cfg.Cache.Enabled {
		redisStore := cache.NewRedisStore(cache.NewRedisClient(cfg.Redis), cfg.App.Name)
		store := domain.CacheStore(cache.NewFailoverStore(redisStore, cache.NewMemoryStore(), logger))
		gw.UseCache(store, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	}
	return gw
}

type cli struct {
	ctx      context.Context
	cfg      *config.Config
	logger   *zerolog.Logger
	gw       *gateway.Client
	sessions *session.Manager
	bus      *events.EventBus
}

func (a *cli) dispatch(command string, args []string) error {
	switch command {
	case "login", "register", "reset-password":
		return a.authCommand(command, args)
	case "services", "categories", "book", "bookings", "cancel", "complete", "review":
		return a.customerCommand(command, args)
	case "provider-services", "provider-bookings", "accept", "reject", "reviews", "export":
		return a.providerCommand(command, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// await subscribes, fires the action, and blocks until the controller
// reports a terminal event for it.
func (a *cli) await(subscribe func(func(controller.Event)) func(), action func()) (controller.Event, error) {
	done := make(chan controller.Event, 8)
	unsubscribe := subscribe(func(ev controller.Event) {
		if ev.Kind != controller.KindLoading {
			done <- ev
		}
	})
	defer unsubscribe()

	action()

	select {
	case ev := <-done:
		if ev.Kind == controller.KindFailure {
			return ev, fmt.Errorf("%s", ev.Message)
		}
		return ev, nil
	case <-a.ctx.Done():
		return controller.Event{}, a.ctx.Err()
	}
}

func (a *cli) authCommand(command string, args []string) error {
	auth := controller.NewAuth(a.gw, a.sessions, a.logger)
	defer auth.Close()

	switch command {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("login needs <email> <password>")
		}
		if _, err := a.await(auth.Subscribe, func() { auth.Login(args[0], args[1]) }); err != nil {
			return err
		}
		sess, _ := a.sessions.Current()
		fmt.Printf("logged in: user=%s role=%s\n", sess.UserID, sess.Role)
	case "register":
		if len(args) < 4 {
			return fmt.Errorf("register needs <name> <email> <password> <role>")
		}
		ev, err := a.await(auth.Subscribe, func() {
			auth.Register(models.RegisterRequest{Name: args[0], Email: args[1], Password: args[2], Role: args[3]})
		})
		if err != nil {
			return err
		}
		fmt.Println(ev.Message)
	case "reset-password":
		if len(args) != 1 {
			return fmt.Errorf("reset-password needs <email>")
		}
		ev, err := a.await(auth.Subscribe, func() { auth.ResetPassword(args[0]) })
		if err != nil {
			return err
		}
		fmt.Println(ev.Message)
	}
	return nil
}

func (a *cli) customerCommand(command string, args []string) error {
	customer := controller.NewCustomer(a.gw, a.sessions, a.bus, a.logger)
	defer customer.Close()

	switch command {
	case "services":
		if _, err := a.await(customer.Subscribe, customer.LoadServices); err != nil {
			return err
		}
		if len(args) > 0 {
			customer.SetQuery(strings.Join(args, " "))
		}
		for _, svc := range customer.FilteredServices() {
			fmt.Printf("%s  %-30s %8.2f  category=%s\n", svc.ID, svc.Title, svc.Price, svc.CategoryID)
		}
	case "categories":
		if _, err := a.await(customer.Subscribe, customer.LoadCategories); err != nil {
			return err
		}
		for _, cat := range customer.Categories() {
			fmt.Printf("%s  %s\n", cat.ID, cat.Name)
		}
	case "book":
		if len(args) != 4 {
			return fmt.Errorf("book needs <serviceId> <date> <time> <address>")
		}
		ev, err := a.await(customer.Subscribe, func() {
			customer.BookService(models.BookServiceRequest{
				ServiceID: args[0], Date: args[1], Time: args[2], Address: args[3],
			})
		})
		if err != nil {
			return err
		}
		fmt.Println(ev.Message)
	case "bookings":
		if _, err := a.await(customer.Subscribe, customer.LoadBookings); err != nil {
			return err
		}
		printBookings(customer.Bookings())
	case "cancel", "complete":
		if len(args) != 1 {
			return fmt.Errorf("%s needs <bookingId>", command)
		}
		action := customer.CancelBooking
		if command == "complete" {
			action = customer.CompleteBooking
		}
		ev, err := a.await(customer.Subscribe, func() { action(args[0]) })
		if err != nil {
			return err
		}
		fmt.Println(ev.Message)
	case "review":
		if len(args) < 3 {
			return fmt.Errorf("review needs <reservationId> <rating> <comment>")
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating must be an integer: %w", err)
		}
		ev, err := a.await(customer.Subscribe, func() {
			customer.SubmitReview(models.ReviewRequest{
				ReservationID: args[0],
				Rating:        rating,
				Comment:       strings.Join(args[2:], " "),
			})
		})
		if err != nil {
			return err
		}
		fmt.Println(ev.Message)
	}
	return nil
}

func (a *cli) providerCommand(command string, args []string) error {
	provider := controller.NewProvider(a.gw, a.sessions, a.bus, a.logger)
	defer provider.Close()

	switch command {
	case "provider-services":
		if _, err := a.await(provider.Subscribe, provider.LoadServices); err != nil {
			return err
		}
		for _, svc := range provider.Services() {
			fmt.Printf("%s  %-30s %8.2f\n", svc.ID, svc.Title, svc.Price)
		}
	case "provider-bookings":
		if _, err := a.await(provider.Subscribe, provider.LoadBookings); err != nil {
			return err
		}
		printBookings(provider.Bookings())
	case "accept", "reject":
		if len(args) != 1 {
			return fmt.Errorf("%s needs <bookingId>", command)
		}
		action := provider.AcceptBooking
		if command == "reject" {
			action = provider.RejectBooking
		}
		ev, err := a.await(provider.Subscribe, func() { action(args[0]) })
		if err != nil {
			return err
		}
		fmt.Println(ev.Message)
	case "reviews":
		if _, err := a.await(provider.Subscribe, provider.LoadReviews); err != nil {
			return err
		}
		for _, review := range provider.Reviews() {
			customer := "unknown"
			if review.Customer != nil {
				customer = review.Customer.Label("unknown")
			}
			fmt.Printf("%d/5 by %s: %s\n", review.Rating, customer, review.Comment)
		}
	case "export":
		if _, err := a.await(provider.Subscribe, provider.LoadBookings); err != nil {
			return err
		}
		path, err := export.BookingsToExcel(provider.Bookings(), a.cfg.Exports.Path, a.logger)
		if err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", path)
	}
	return nil
}

func printBookings(bookings []models.Booking) {
	for _, b := range bookings {
		fmt.Printf("%s  %-25s %-12s %s  by %s\n",
			b.ID, b.ServiceTitle(), b.Status, b.Date, b.CustomerName())
	}
}
