// Seed creates a demo account with a month of todos and bills. Run from
// project root: go run ./scripts/seed [-user demo] [-password demo123]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"todo-bills/internal/auth"
	"todo-bills/internal/config"
	"todo-bills/internal/database"
	"todo-bills/internal/models"
	"todo-bills/internal/repository"
)

func main() {
	username := flag.String("user", "demo", "username to create")
	password := flag.String("password", "demo123", "password for the user")
	count := flag.Int("n", 20, "todos and bills to create")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()
	db := database.DB(ctx)
	if db == nil {
		fmt.Fprintln(os.Stderr, "DATABASE_URL not set or DB connection failed")
		os.Exit(1)
	}
	if err := database.MigrateOrCreateSchema(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Schema failed:", err)
		os.Exit(1)
	}

	users := repository.NewUsers(db)
	user, err := users.ByUsername(ctx, *username)
	if errors.Is(err, repository.ErrNotFound) {
		hash, herr := auth.HashPassword(*password)
		if herr != nil {
			fmt.Fprintln(os.Stderr, herr)
			os.Exit(1)
		}
		user, err = users.Create(ctx, *username, hash)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "User failed:", err)
		os.Exit(1)
	}

	todos := repository.NewTodos(db)
	bills := repository.NewBills(db)
	today := civil.DateOf(time.Now().In(config.Get().Location()))
	start := time.Now()

	for i := 0; i < *count; i++ {
		due := today.AddDays(i - *count/2)
		desc := fmt.Sprintf("Seeded todo %d", i+1)
		if _, err := todos.Create(ctx, user.ID, models.NewTodo{
			Title:       fmt.Sprintf("Todo %d", i+1),
			Description: &desc,
			DueDate:     &due,
		}); err != nil {
			fmt.Fprintln(os.Stderr, "Insert todo failed:", err)
			os.Exit(1)
		}
		if _, err := bills.Create(ctx, user.ID, models.NewBill{
			Title:   fmt.Sprintf("Bill %d", i+1),
			Amount:  decimal.NewFromInt(int64(10 * (i + 1))).Add(decimal.RequireFromString("0.99")),
			DueDate: &due,
		}); err != nil {
			fmt.Fprintln(os.Stderr, "Insert bill failed:", err)
			os.Exit(1)
		}
		fmt.Printf("\rInserted %d / %d", i+1, *count)
	}

	fmt.Printf("\nDone: %d todos and %d bills for %s (%s) in %v\n",
		*count, *count, user.Username, user.ID, time.Since(start))
}
