package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "paytrack/docs"
)

// app is the single application instance the handlers operate on.
var app *App

// @title Paytrack API
// @version 1.0
// @description Biweekly paycheck budgeting engine: expense templates, a rolling 24-period projection window, and debt payoff simulation.
// @BasePath /
func main() {
	store, err := openStore()
	if err != nil {
		log.Fatal("Failed to open storage: ", err)
	}
	defer store.Close()

	app, err = newApp(store)
	if err != nil {
		log.Fatal("Failed to initialize application state: ", err)
	}
	defer app.flush()

	r := setupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	r.Run(":" + port)
}

// openStore selects the persistence backend: Postgres when DB_HOST is set,
// otherwise a local JSON state file.
func openStore() (Store, error) {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		statePath := os.Getenv("STATE_FILE")
		if statePath == "" {
			statePath = filepath.Join("data", "state.json")
		}
		log.Printf("Using file storage at %s", statePath)
		return newFileStore(statePath)
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "postgres"
	}
	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		dbPassword = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "paytrack"
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	// Connect with retry logic so the server survives a database that is
	// still starting up.
	maxRetries := 30
	retryInterval := time.Second * 2

	var store *PostgresStore
	var err error
	for i := 0; i < maxRetries; i++ {
		store, err = newPostgresStore(context.Background(), connStr)
		if err != nil {
			log.Printf("Attempt %d: Error connecting to database: %v", i+1, err)
			time.Sleep(retryInterval)
			continue
		}
		log.Println("Successfully connected to database")
		break
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	if err := migrateDatabase(connStr); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

// migrateDatabase runs schema migrations over a plain database/sql
// connection.
func migrateDatabase(connStr string) error {
	migrationsPath := filepath.Join(".", "db", "migrations")

	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		log.Printf("Migrations directory not found at %s, skipping migrations", migrationsPath)
		return nil
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	log.Println("Running database migrations...")
	if err := runMigrations(db, migrationsPath); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	if version, dirty, err := getMigrationVersion(db, migrationsPath); err == nil {
		if dirty {
			log.Printf("Current migration version: %d (DIRTY - migration failed)", version)
		} else {
			log.Printf("Current migration version: %d", version)
		}
	}
	log.Println("Database migrations completed successfully")
	return nil
}

// setupRouter wires the middleware and route table.
func setupRouter() *gin.Engine {
	r := gin.Default()

	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:5173"
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{allowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	registerRoutes(r)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// registerRoutes attaches every API route to the engine.
func registerRoutes(r *gin.Engine) {
	r.GET("/api/state", getAppState)

	r.GET("/api/income", getIncomeSettings)
	r.PUT("/api/income", updateIncomeSettings)

	r.GET("/api/source-expenses", getSourceExpenses)
	r.POST("/api/source-expenses", createSourceExpense)
	r.PUT("/api/source-expenses/:id", updateSourceExpense)
	r.DELETE("/api/source-expenses/:id", deleteSourceExpense)

	r.GET("/api/periods", getPeriods)
	r.POST("/api/periods/generate", regeneratePeriods)
	r.GET("/api/periods/:id", getPeriod)
	r.GET("/api/periods/:id/totals", getPeriodTotals)
	r.PUT("/api/periods/:id/additional-income", setAdditionalIncome)

	r.PUT("/api/periods/:id/expenses/:expenseId/status", updateExpenseStatusHandler)
	r.POST("/api/periods/:id/expenses/:expenseId/payments", recordPartialPaymentHandler)
	r.POST("/api/periods/:id/expenses/:expenseId/move", moveExpenseHandler)
	r.PUT("/api/periods/:id/expenses/:expenseId", editExpenseHandler)
	r.DELETE("/api/periods/:id/expenses/:expenseId", deleteExpenseHandler)

	r.POST("/api/periods/:id/one-offs", addOneOffHandler)
	r.PUT("/api/periods/:id/one-offs/:oneOffId", updateOneOffHandler)

	r.POST("/api/undo", undoHandler)

	r.GET("/api/debt/payoff", getDebtPayoff)
	r.PUT("/api/debt/settings", updateDebtSettings)

	r.GET("/api/analytics", getAnalytics)

	r.GET("/api/export/csv", exportCSV)
	r.GET("/api/export/json", exportJSON)
	r.POST("/api/import/json", importJSON)
}
