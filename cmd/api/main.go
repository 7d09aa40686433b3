package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/montoanel/deliveryweb-backend/internal/modules/auth"
	"github.com/montoanel/deliveryweb-backend/internal/modules/cashier"
	"github.com/montoanel/deliveryweb-backend/internal/modules/catalog"
	"github.com/montoanel/deliveryweb-backend/internal/modules/order"
	"github.com/montoanel/deliveryweb-backend/internal/modules/settlement"
	"github.com/montoanel/deliveryweb-backend/internal/modules/user"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment as-is")
	}

	var (
		catalogRepo catalog.Repository
		orderRepo   order.Repository
		cashierRepo cashier.Repository
		userRepo    user.Repository
	)

	if os.Getenv("STORE") == "memory" {
		log.Println("running on in-memory stores")
		catalogRepo = catalog.NewMemoryRepository()
		orderRepo = order.NewMemoryRepository()
		cashierRepo = cashier.NewMemoryRepository()
		userRepo = user.NewMemoryRepository()
	} else {
		db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			log.Fatal(err)
		}
		if err := runMigrations(db); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Successfully connected to the database!")

		catalogRepo = catalog.NewPostgresRepository(db)
		orderRepo = order.NewPostgresRepository(db)
		cashierRepo = cashier.NewPostgresRepository(db)
		userRepo = user.NewPostgresRepository(db)
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Identity ────────────────────────────────────────────
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Catalog registries ──────────────────────────────────
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	// ── Orders & payment ledger ─────────────────────────────
	orderService := order.NewService(orderRepo, catalogService, catalogService)
	order.NewHandler(orderService).RegisterRoutes(router)

	// ── Cash sessions ───────────────────────────────────────
	cashierService := cashier.NewService(cashierRepo)
	cashier.NewHandler(cashierService).RegisterRoutes(router)

	// ── Settlement ──────────────────────────────────────────
	settlementService := settlement.NewService(orderService, cashierService)
	settlement.NewHandler(settlementService).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("DeliveryWeb API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

func runMigrations(db *sql.DB) error {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return err
	}
	sourceURL := os.Getenv("MIGRATIONS_URL")
	if sourceURL == "" {
		sourceURL = "file://migrations"
	}
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
