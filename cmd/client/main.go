package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yhamdani/locadrive/internal/client/state"
	"github.com/yhamdani/locadrive/internal/client/store"
	"github.com/yhamdani/locadrive/internal/docstore"
	"github.com/yhamdani/locadrive/internal/models"
	"github.com/yhamdani/locadrive/internal/session"
	"github.com/yhamdani/locadrive/internal/stats"
)

var (
	version   string
	buildDate string
)

// app bundles the REPL's long-lived collaborators.
type app struct {
	client   *store.Client
	local    *session.FileStore
	resolver *session.Resolver
}

// repl runs the interactive shell loop.
func (a *app) repl() {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("locadrive> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		ctx := context.Background()
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, register, login, logout, whoami, catalog, addcar, delcar <id>, reserve <carId> <pickup> <return>, rentals, setstatus <id> <status>, delreservation <id>, accounts, delaccount <id>, dashboard, exit")
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.client.Logout()
			_ = a.local.ClearSession()
			fmt.Println("Signed out")
		case "whoami":
			a.whoami(ctx)
		case "catalog":
			a.catalog(ctx)
		case "addcar":
			a.addCar(ctx)
		case "delcar":
			if len(args) < 2 {
				fmt.Println("Usage: delcar <id>")
				continue
			}
			a.adminRemove(ctx, models.CollectionCars, args[1])
		case "reserve":
			if len(args) < 4 {
				fmt.Println("Usage: reserve <carId> <pickup YYYY-MM-DD> <return YYYY-MM-DD>")
				continue
			}
			a.reserve(ctx, args[1], args[2], args[3])
		case "rentals":
			a.rentals(ctx)
		case "setstatus":
			if len(args) < 3 {
				fmt.Println("Usage: setstatus <reservationId> <status>")
				continue
			}
			a.setStatus(ctx, args[1], strings.Join(args[2:], " "))
		case "delreservation":
			if len(args) < 2 {
				fmt.Println("Usage: delreservation <id>")
				continue
			}
			a.adminRemove(ctx, models.CollectionReservations, args[1])
		case "accounts":
			a.accounts(ctx)
		case "delaccount":
			if len(args) < 2 {
				fmt.Println("Usage: delaccount <id>")
				continue
			}
			a.deleteAccount(ctx, args[1])
		case "dashboard":
			a.dashboard()
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) register(ctx context.Context) {
	username := prompt("username: ")
	password := prompt("password: ")
	role := prompt("role (empty for customer): ")
	id, err := a.client.Register(ctx, username, password, role)
	if err != nil {
		fmt.Println("Registration failed:", err)
		return
	}
	fmt.Println("Account created:", id)
}

func (a *app) login(ctx context.Context) {
	username := prompt("username: ")
	password := prompt("password: ")
	role := prompt("role (empty for customer): ")
	identity, err := a.client.Login(ctx, username, password, role)
	if err != nil {
		fmt.Println("Login failed:", err)
		return
	}
	// Persist the identity locally so the next start resolves a session
	// without re-authenticating.
	_ = a.local.SaveSession(session.Session{ID: identity.ID, Username: identity.Username, Role: identity.Role})
	fmt.Printf("Signed in as %s (%s)\n", identity.Username, identity.Role)
}

func (a *app) whoami(ctx context.Context) {
	actor, err := a.resolver.Resolve(ctx)
	if err != nil {
		fmt.Println("Session lookup failed:", err)
		return
	}
	if actor == nil {
		fmt.Println("Not signed in")
		return
	}
	kind := "verified"
	if actor.Local {
		kind = "local session"
	}
	fmt.Printf("%s role=%s (%s)\n", actor.Display, actor.Role, kind)
}

func (a *app) catalog(ctx context.Context) {
	snap, err := a.client.List(ctx, models.CollectionCars, docstore.Query{OrderBy: "dailyPrice"})
	if err != nil {
		fmt.Println("Cannot load catalog:", err)
		return
	}
	if len(snap) == 0 {
		fmt.Println("No vehicles available")
		return
	}
	for _, doc := range snap {
		car := models.CarFromDocument(doc)
		marker := " "
		if car.Available {
			marker = "*"
		}
		fmt.Printf("%s %-12s %-24s %-10s %.2f €/day\n", marker, car.ID, car.Model, car.Category, car.DailyPrice)
	}
}

func (a *app) addCar(ctx context.Context) {
	actor, _ := a.resolver.Resolve(ctx)
	if !actor.CanAdminister() {
		fmt.Println("Admin access required")
		return
	}
	model := prompt("model: ")
	if model == "" {
		fmt.Println("Model is required")
		return
	}
	category := prompt("category: ")
	priceStr := prompt("daily price: ")
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		fmt.Println("Daily price must be a positive number")
		return
	}
	id, err := a.client.Create(ctx, models.CollectionCars, docstore.Document{
		"model":      model,
		"category":   category,
		"dailyPrice": price,
		"available":  true,
		"createdAt":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		fmt.Println("Cannot save vehicle:", err)
		return
	}
	fmt.Println("Vehicle added:", id)
}

func (a *app) adminRemove(ctx context.Context, collection, id string) {
	actor, _ := a.resolver.Resolve(ctx)
	if !actor.CanAdminister() {
		fmt.Println("Admin access required")
		return
	}
	if err := a.client.Remove(ctx, collection, id); err != nil {
		fmt.Println("Delete failed:", err)
		return
	}
	fmt.Println("Deleted", id)
}

func (a *app) reserve(ctx context.Context, carID, pickup, ret string) {
	actor, _ := a.resolver.Resolve(ctx)
	if actor == nil {
		fmt.Println("Sign in first")
		return
	}
	start, okStart := stats.ParseDate(pickup)
	end, okEnd := stats.ParseDate(ret)
	if !okStart || !okEnd || !end.After(start) {
		fmt.Println("Dates must be YYYY-MM-DD with return after pickup")
		return
	}
	days := int(end.Sub(start).Hours() / 24)

	// Price and label are snapshotted at booking time; the reference may
	// dangle later if the car is removed.
	var car models.Car
	snap, err := a.client.List(ctx, models.CollectionCars, docstore.Query{})
	if err != nil {
		fmt.Println("Cannot load catalog:", err)
		return
	}
	for _, doc := range snap {
		if doc.ID() == carID {
			car = models.CarFromDocument(doc)
			break
		}
	}
	if car.ID == "" {
		fmt.Println("Unknown vehicle:", carID)
		return
	}

	id, err := a.client.Create(ctx, models.CollectionReservations, docstore.Document{
		"userId":       actor.ID,
		"vehicleId":    car.ID,
		"vehicleModel": car.Model,
		"pickupDate":   pickup,
		"returnDate":   ret,
		"days":         days,
		"dailyPrice":   car.DailyPrice,
		"totalPrice":   float64(days) * car.DailyPrice,
		"status":       "En attente",
		"createdAt":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		fmt.Println("Reservation failed:", err)
		return
	}
	fmt.Printf("Reservation %s: %s for %d days, %.2f €\n", id, car.Model, days, float64(days)*car.DailyPrice)
}

func (a *app) rentals(ctx context.Context) {
	snap, err := a.client.List(ctx, models.CollectionReservations, docstore.Query{OrderBy: "createdAt", Descending: true})
	if err != nil {
		fmt.Println("Cannot load reservations:", err)
		return
	}
	actor, _ := a.resolver.Resolve(ctx)
	admin := actor.CanAdminister()
	shown := 0
	for _, doc := range snap {
		r := models.ReservationFromDocument(doc)
		if !admin && (actor == nil || r.UserID != actor.ID) {
			continue
		}
		fmt.Printf("%-12s %-24s %s → %s  %8.2f €  [%s] %s\n",
			r.ID, r.VehicleLabel(), r.PickupDate, r.ReturnDate, r.TotalPrice,
			stats.NormalizeStatus(r.Status), r.Status)
		shown++
	}
	if shown == 0 {
		fmt.Println("No reservations")
	}
}

func (a *app) setStatus(ctx context.Context, id, status string) {
	actor, _ := a.resolver.Resolve(ctx)
	if !actor.CanAdminister() {
		fmt.Println("Admin access required")
		return
	}
	if err := a.client.Patch(ctx, models.CollectionReservations, id, docstore.Document{"status": status}); err != nil {
		fmt.Println("Update failed:", err)
		return
	}
	fmt.Println("Status updated")
}

func (a *app) accounts(ctx context.Context) {
	actor, _ := a.resolver.Resolve(ctx)
	if !actor.CanAdminister() {
		fmt.Println("Admin access required")
		return
	}
	snap, err := a.client.List(ctx, models.CollectionCustomers, docstore.Query{OrderBy: "username"})
	if err != nil {
		fmt.Println("Cannot load accounts:", err)
		return
	}
	for _, doc := range snap {
		acc := models.AccountFromDocument(doc)
		fmt.Printf("%-12s %-20s %-12s %s\n", acc.ID, acc.Username, acc.Role, acc.Status)
	}
}

func (a *app) deleteAccount(ctx context.Context, id string) {
	actor, _ := a.resolver.Resolve(ctx)
	if !actor.CanAdminister() {
		fmt.Println("Admin access required")
		return
	}
	snap, err := a.client.List(ctx, models.CollectionCustomers, docstore.Query{})
	if err != nil {
		fmt.Println("Cannot load accounts:", err)
		return
	}
	for _, doc := range snap {
		acc := models.AccountFromDocument(doc)
		if acc.ID != id {
			continue
		}
		// The primary admin account cannot be removed from the console.
		if acc.Username == "admin" {
			fmt.Println("The admin account cannot be deleted")
			return
		}
	}
	if err := a.client.Remove(ctx, models.CollectionCustomers, id); err != nil {
		fmt.Println("Delete failed:", err)
		return
	}
	fmt.Println("Account deleted")
}

// dashboard subscribes to cars, reservations and customer accounts, waits
// for all three to deliver and prints the aggregated activity report.
func (a *app) dashboard() {
	var cars, reservations, customers state.Collection
	tracker := state.NewLoadTracker(models.CollectionCars, models.CollectionReservations, models.CollectionCustomers)

	unsubCars := state.Bind(a.client, models.CollectionCars, docstore.Query{}, &cars, tracker)
	defer unsubCars()
	unsubRes := state.Bind(a.client, models.CollectionReservations, docstore.Query{}, &reservations, tracker)
	defer unsubRes()
	unsubCust := state.Bind(a.client, models.CollectionCustomers, docstore.Query{}, &customers, tracker)
	defer unsubCust()

	deadline := time.Now().Add(5 * time.Second)
	for tracker.Loading() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if tracker.Loading() {
		fmt.Println("Dashboard timed out waiting for data")
		return
	}

	resSnap := reservations.Snapshot()
	byStatus := stats.CountByStatus(resSnap, "status")
	fmt.Printf("Vehicles: %d   Customers: %d   Reservations: %d\n", cars.Len(), customers.Len(), len(resSnap))
	fmt.Printf("  pending: %d  active: %d  completed: %d\n",
		byStatus[stats.StatusPending], byStatus[stats.StatusActive], byStatus[stats.StatusCompleted])
	fmt.Printf("Revenue: %.2f €\n", stats.Revenue(resSnap, "totalPrice"))

	if label, count, ok := stats.PopularVehicle(resSnap); ok {
		fmt.Printf("Most reserved: %s (%d)\n", label, count)
	}

	fmt.Println("Reservations per month:")
	for _, bucket := range stats.MonthlyHistogram(resSnap, "pickupDate") {
		fmt.Printf("  %-10s %d\n", bucket.Label(), bucket.Count)
	}

	fmt.Println("Fleet by category:")
	for category, group := range stats.GroupByCategory(cars.Snapshot()) {
		fmt.Printf("  %-12s %d\n", category, len(group))
	}
}

// main parses flags, restores the local session and starts the shell.
func main() {
	var (
		baseURL     string
		sessionPath string
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&sessionPath, "session", ".locadrive-session.json", "path to the local session file")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("LocaDrive Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	client := store.New(store.Config{BaseURL: baseURL})
	defer client.Close()

	local := session.NewFileStore(sessionPath)
	resolver := session.NewResolver(client, local, client, nil)

	app := &app{client: client, local: local, resolver: resolver}
	app.repl()
}
