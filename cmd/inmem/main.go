// Package main runs the device authorization service without a database
// or SMTP server. Emailed codes and links are printed to the log. Useful
// for development and for exercising the API without infrastructure.
//
// All data is lost when the server stops. For production, use
// cmd/deviceauthz with PostgreSQL.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tendant/chi-demo/app"

	"github.com/quickcart/device-authz/pkg/client"
	"github.com/quickcart/device-authz/pkg/customer"
	"github.com/quickcart/device-authz/pkg/deviceauthz"
	"github.com/quickcart/device-authz/pkg/deviceauthz/api"
	"github.com/quickcart/device-authz/pkg/notice"
	"github.com/quickcart/device-authz/pkg/notification"
	"github.com/quickcart/device-authz/pkg/sessions"
	"github.com/quickcart/device-authz/pkg/tokengen"
)

const (
	sessionSecret = "inmem-dev-secret-change-in-production"
	baseURL       = "http://localhost:4000"
)

// logNotifier prints notices instead of delivering them.
type logNotifier struct{}

func (logNotifier) Send(noticeType notification.NoticeType, data notification.NotificationData, _ notification.NoticeTemplate) error {
	slog.Info("Notice", "type", noticeType, "to", data.To, "data", data.Data)
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting in-memory device authorization service (no database required)")
	slog.Info(strings.Repeat("=", 60))

	authzRepo := deviceauthz.NewInMemAuthorizationRepository()
	customerRepo := customer.NewInMemCustomerRepository()
	sessionStore := sessions.NewInMemSessionStore()

	notificationManager := notification.NewNotificationManager()
	notificationManager.RegisterNotifier(notification.EmailSystem, logNotifier{})
	if err := notice.RegisterTemplates(notificationManager); err != nil {
		slog.Error("Failed registering templates", "error", err)
		os.Exit(-1)
	}

	accessToken := seedDemoData(customerRepo, sessionStore)

	authzService := deviceauthz.NewAuthorizationService(
		authzRepo,
		customerRepo,
		sessionStore,
		notificationManager,
		baseURL,
	)

	cookieSetter := tokengen.NewCookieSetter(true, false)
	handle := api.NewHandle(authzService, cookieSetter)

	server := app.NewApp(app.WithPort(4000))
	app.RegisterHealthzRoutes(server.R)
	server.R.Mount("/account/authorize", api.Routes(handle, []byte(sessionSecret)))

	slog.Info(strings.Repeat("=", 60))
	slog.Info("In-memory service ready")
	slog.Info("Base URL: " + baseURL)
	slog.Info("")
	slog.Info("Demo access token (set as the access_token cookie):")
	slog.Info("  " + accessToken)
	slog.Info("")
	slog.Info("API endpoints (under /account/authorize):")
	slog.Info("  GET  /         - Start a verification round (code is logged)")
	slog.Info("  POST /save     - Submit the code")
	slog.Info("  POST /send     - Resend the code")
	slog.Info("  GET  /unlock   - Recovery page state")
	slog.Info("  POST /confirm  - Email the recovery link (link is logged)")
	slog.Info("  GET  /reset    - Consume the recovery link")
	slog.Info(strings.Repeat("=", 60))

	server.Run()
}

func seedDemoData(customerRepo *customer.InMemCustomerRepository, sessionStore *sessions.InMemSessionStore) string {
	ctx := context.Background()

	cust, err := customerRepo.CreateCustomer(ctx, customer.Customer{
		Email: "demo@example.com",
		Name:  "Demo Customer",
	})
	if err != nil {
		slog.Error("Failed seeding customer", "error", err)
		os.Exit(-1)
	}

	session, err := sessionStore.CreateSession(ctx, cust.ID)
	if err != nil {
		slog.Error("Failed seeding session", "error", err)
		os.Exit(-1)
	}

	accessToken, err := client.CreateToken([]byte(sessionSecret), cust.ID, cust.Email, session.Token, 24*time.Hour)
	if err != nil {
		slog.Error("Failed creating demo token", "error", err)
		os.Exit(-1)
	}

	slog.Info("Seeded demo customer", "email", cust.Email, "customerID", cust.ID)
	return accessToken
}
