// Command smoke exercises a running feedback service end to end: it lists the
// first page, submits one entry and checks that the entry shows up.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-client/config"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/pkg/feedbackapi"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/google/uuid"
)

func main() {
	logger.InitLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client := feedbackapi.NewClientForURL(cfg.API.BaseURL)
	fmt.Printf("Feedback service: %s\n", cfg.API.BaseURL)
	fmt.Println(strings.Repeat("=", 50))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	failed := false
	step := func(name string, fn func() error) {
		fmt.Printf("\n%s\n", name)
		if err := fn(); err != nil {
			fmt.Printf("   FAIL: %v\n", err)
			failed = true
			return
		}
		fmt.Println("   ok")
	}

	step("1. List first page", func() error {
		page, err := client.GetFeedbacksPage(ctx, 0, cfg.API.PageSize)
		if err != nil {
			return err
		}
		fmt.Printf("   %d of %d entries, %d pages\n", len(page.Items), page.TotalElements, page.TotalPages)
		return nil
	})

	marker := "smoke " + uuid.NewString()
	var created *types.FeedbackResponse
	step("2. Submit an entry", func() error {
		created, err = client.SubmitFeedback(ctx, types.FeedbackRequest{
			Name:    "Smoke Test",
			Email:   "smoke@example.com",
			Message: marker,
		})
		if err != nil {
			return err
		}
		fmt.Printf("   id=%d createdAt=%s\n", created.ID, created.CreatedAt)
		return nil
	})

	step("3. Find it on the first page", func() error {
		if created == nil {
			return fmt.Errorf("nothing was created")
		}
		page, err := client.GetFeedbacksPage(ctx, 0, cfg.API.PageSize)
		if err != nil {
			return err
		}
		for _, it := range page.Items {
			if it.ID == created.ID && it.Message == marker {
				return nil
			}
		}
		return fmt.Errorf("entry %d not on the first page", created.ID)
	})

	step("4. Reject an invalid entry", func() error {
		_, err := client.SubmitFeedback(ctx, types.FeedbackRequest{Name: "", Email: "nope", Message: ""})
		if err == nil {
			return fmt.Errorf("expected the server to reject the entry")
		}
		fmt.Printf("   rejected: %v\n", err)
		return nil
	})

	if failed {
		os.Exit(1)
	}
	fmt.Println("\nAll checks passed")
}
