package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yourdailydose/dailydose/internal/config"
	"github.com/yourdailydose/dailydose/internal/db"
	"github.com/yourdailydose/dailydose/internal/delivery"
)

var subscribersCmd = &cobra.Command{
	Use:   "subscribers",
	Short: "Manage subscribers",
}

var subscribersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active subscribers",
	RunE:  runSubscribersList,
}

var (
	addFirstName  string
	addLastName   string
	addEmail      string
	addPhone      string
	addPersona    string
	addCategories []string
	addTone       string
	addTime       string
	addMethods    []string
	addGoals      []string
)

var subscribersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subscriber",
	RunE:  runSubscribersAdd,
}

var subscribersDeactivateCmd = &cobra.Command{
	Use:   "deactivate <subscriber-id>",
	Short: "Deactivate a subscriber",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubscribersDeactivate,
}

func init() {
	subscribersAddCmd.Flags().StringVar(&addFirstName, "first-name", "", "first name (required)")
	subscribersAddCmd.Flags().StringVar(&addLastName, "last-name", "", "last name")
	subscribersAddCmd.Flags().StringVar(&addEmail, "email", "", "email address")
	subscribersAddCmd.Flags().StringVar(&addPhone, "phone", "", "phone number (E.164)")
	subscribersAddCmd.Flags().StringVar(&addPersona, "persona", "", "persona (Athlete, Entrepreneur, Student, ...)")
	subscribersAddCmd.Flags().StringSliceVar(&addCategories, "categories", nil, "quote categories (required)")
	subscribersAddCmd.Flags().StringVar(&addTone, "tone", "", "tone preference")
	subscribersAddCmd.Flags().StringVar(&addTime, "delivery-time", "", "delivery time (HH:MM)")
	subscribersAddCmd.Flags().StringSliceVar(&addMethods, "methods", nil, "delivery methods (sms, email)")
	subscribersAddCmd.Flags().StringSliceVar(&addGoals, "goals", nil, "personal goals")

	subscribersCmd.AddCommand(subscribersListCmd)
	subscribersCmd.AddCommand(subscribersAddCmd)
	subscribersCmd.AddCommand(subscribersDeactivateCmd)
	rootCmd.AddCommand(subscribersCmd)
}

func runSubscribersList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	subs, err := store.ListActiveSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}

	if len(subs) == 0 {
		fmt.Println("No active subscribers.")
		return nil
	}

	for _, sub := range subs {
		contact := sub.Email
		if contact == "" {
			contact = sub.Phone
		}
		fmt.Printf("%s  %s %s  <%s>  %s at %s via %s\n",
			sub.ID, sub.FirstName, sub.LastName, contact, sub.Persona,
			sub.DeliveryTime, strings.Join(sub.DeliveryMethods, ","))
	}
	fmt.Printf("\n%d active subscriber(s)\n", len(subs))

	return nil
}

func runSubscribersAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if addFirstName == "" {
		return fmt.Errorf("--first-name is required")
	}
	if addEmail == "" && addPhone == "" {
		return fmt.Errorf("--email or --phone is required")
	}
	if addEmail != "" && !delivery.ValidEmail(addEmail) {
		return fmt.Errorf("invalid email address %q", addEmail)
	}
	if addPhone != "" && !delivery.ValidPhone(addPhone) {
		return fmt.Errorf("invalid phone number %q", addPhone)
	}
	if len(addCategories) == 0 {
		return fmt.Errorf("--categories is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	phone := addPhone
	if phone != "" {
		phone = delivery.NormalizePhone(phone)
	}

	sub, err := store.CreateSubscriber(ctx, db.CreateSubscriberParams{
		FirstName:       addFirstName,
		LastName:        addLastName,
		Email:           strings.ToLower(strings.TrimSpace(addEmail)),
		Phone:           phone,
		Persona:         addPersona,
		Categories:      addCategories,
		TonePreference:  addTone,
		DeliveryTime:    addTime,
		DeliveryMethods: addMethods,
		PersonalGoals:   addGoals,
	})
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}

	fmt.Printf("Created subscriber %s (%s)\n", sub.ID, sub.FirstName)
	return nil
}

func runSubscribersDeactivate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeactivateSubscriber(ctx, args[0]); err != nil {
		return fmt.Errorf("deactivate subscriber: %w", err)
	}

	fmt.Printf("Deactivated subscriber %s\n", args[0])
	return nil
}
