package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/NikolasHofmann/active-trading/internal/ledger"
)

// app drives the interactive menu over the ledger service.
type app struct {
	service *ledger.Service
	in      *bufio.Scanner
	out     io.Writer
}

func (a *app) run(ctx context.Context) {
	for {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "--- Trade Logger ---")
		fmt.Fprintln(a.out, "1. Add new trade")
		fmt.Fprintln(a.out, "2. View all trades")
		fmt.Fprintln(a.out, "3. View open trades with current profit/loss")
		fmt.Fprintln(a.out, "4. Complete an open trade (enter sell price)")
		fmt.Fprintln(a.out, "5. Delete a trade")
		fmt.Fprintln(a.out, "6. Exit")

		choice, ok := a.prompt("Choose an option: ")
		if !ok {
			return
		}

		switch strings.TrimSpace(choice) {
		case "1":
			a.addTrade()
		case "2":
			a.listTrades(ctx, ledger.All)
		case "3":
			a.listTrades(ctx, ledger.OpenOnly)
		case "4":
			a.completeTrade()
		case "5":
			a.deleteTrade(ctx)
		case "6":
			fmt.Fprintln(a.out, "Exiting...")
			return
		default:
			fmt.Fprintln(a.out, "Invalid option. Please choose again.")
		}
	}
}

// prompt prints a label and reads one line. ok is false when stdin is
// closed, which ends the session.
func (a *app) prompt(label string) (string, bool) {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return "", false
	}
	return a.in.Text(), true
}

func (a *app) promptFloat(label string) (float64, bool) {
	raw, ok := a.prompt(label)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid number %q.\n", strings.TrimSpace(raw))
		return 0, false
	}
	return v, true
}

func (a *app) addTrade() {
	ticker, ok := a.prompt("Enter stock ticker: ")
	if !ok {
		return
	}
	quantity, ok := a.promptFloat("Enter number of stocks bought: ")
	if !ok {
		return
	}
	buyPrice, ok := a.promptFloat("Enter buy price per stock: ")
	if !ok {
		return
	}

	raw, ok := a.prompt("Enter sell price per stock (or leave blank if not sold yet): ")
	if !ok {
		return
	}
	var sellPrice *float64
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			fmt.Fprintf(a.out, "Invalid number %q.\n", trimmed)
			return
		}
		sellPrice = &v
	}

	trade, err := a.service.Add(strings.TrimSpace(ticker), quantity, buyPrice, sellPrice)
	if err != nil {
		fmt.Fprintf(a.out, "Could not add trade: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "\nTrade added with ID %d.\n", trade.ID)
}

func (a *app) listTrades(ctx context.Context, filter ledger.Filter) {
	listing, err := a.service.List(ctx, filter)
	if err != nil {
		fmt.Fprintf(a.out, "Could not read the ledger: %v\n", err)
		return
	}
	renderListing(a.out, listing)
}

func (a *app) completeTrade() {
	ticker, ok := a.prompt("Enter stock ticker: ")
	if !ok {
		return
	}
	rawID, ok := a.prompt("Enter trade ID to complete (leave blank to auto-complete latest open trade for ticker): ")
	if !ok {
		return
	}
	var id *int
	if trimmed := strings.TrimSpace(rawID); trimmed != "" {
		v, err := strconv.Atoi(trimmed)
		if err != nil {
			fmt.Fprintf(a.out, "Invalid trade ID %q.\n", trimmed)
			return
		}
		id = &v
	}
	sellPrice, ok := a.promptFloat("Enter sell price per stock: ")
	if !ok {
		return
	}

	trade, err := a.service.Complete(strings.TrimSpace(ticker), id, sellPrice)
	if errors.Is(err, ledger.ErrNoOpenMatch) {
		fmt.Fprintln(a.out, "Could not find matching open trade to update.")
		return
	}
	if err != nil {
		fmt.Fprintf(a.out, "Could not complete trade: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Trade %d completed successfully.\n", trade.ID)
}

func (a *app) deleteTrade(ctx context.Context) {
	a.listTrades(ctx, ledger.All)

	raw, ok := a.prompt("\nEnter ID of trade to delete (or 'cancel' to go back): ")
	if !ok {
		return
	}
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "cancel") {
		return
	}
	id, err := strconv.Atoi(trimmed)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid input. Please enter a valid trade ID.")
		return
	}

	if _, err := a.service.Delete(id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			fmt.Fprintln(a.out, "Trade ID not found.")
		} else {
			fmt.Fprintf(a.out, "Could not delete trade: %v\n", err)
		}
		return
	}
	fmt.Fprintf(a.out, "Trade with ID %d deleted.\n", id)
}
