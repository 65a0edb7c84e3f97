// Package models defines the core data structures for vehicles, reservations
// and accounts, as typed views over the schemaless backend documents.
package models

import (
	"github.com/yhamdani/locadrive/internal/docstore"
)

// Collection names used by the backend document store.
const (
	// CollectionCars holds the vehicle catalog.
	CollectionCars = "cars"
	// CollectionReservations holds customer reservations / rentals.
	CollectionReservations = "reservations"
	// CollectionEmployees holds staff accounts (admin console logins).
	CollectionEmployees = "employees"
	// CollectionCustomers holds regular customer accounts.
	CollectionCustomers = "utilisateurs"
	// CollectionProfiles holds role/profile records keyed by auth user id.
	CollectionProfiles = "users"
	// CollectionItems holds the free-form notes shown on the home screen.
	CollectionItems = "items"
)

// UnknownVehicleLabel is rendered when a reservation references a vehicle
// that no longer exists in the catalog.
const UnknownVehicleLabel = "véhicule à confirmer"

// Car represents a vehicle in the rental catalog.
type Car struct {
	// ID is the document identifier.
	ID string `json:"id"`
	// Model is the vehicle model name. Required to save.
	Model string `json:"model"`
	// Category is a free-text category label (suv, citadine, compacte, ...).
	Category string `json:"category"`
	// Year is the vehicle's model year.
	Year int `json:"year"`
	// DailyPrice is the rental price per day. Required to save.
	DailyPrice float64 `json:"dailyPrice"`
	// Description is free-text marketing copy.
	Description string `json:"description"`
	// Available reports whether the vehicle can currently be reserved.
	Available bool `json:"available"`
	// CreatedAt is the creation timestamp in RFC 3339 form.
	CreatedAt string `json:"createdAt"`
}

// Reservation represents a rental request placed by a customer.
type Reservation struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	// VehicleModel is the denormalized vehicle label at booking time.
	VehicleModel string `json:"vehicleModel"`
	// VehicleID references the car document. May dangle; no integrity is
	// enforced between reservations and the catalog.
	VehicleID string `json:"vehicleId"`
	// PickupDate and ReturnDate are stored as YYYY-MM-DD strings.
	PickupDate string `json:"pickupDate"`
	PickupTime string `json:"pickupTime"`
	ReturnDate string `json:"returnDate"`
	ReturnTime string `json:"returnTime"`
	// Days is the computed rental duration.
	Days int `json:"days"`
	// DailyPrice is the per-day price snapshot taken at booking time.
	DailyPrice float64 `json:"dailyPrice"`
	// TotalPrice is Days * DailyPrice, computed at booking time.
	TotalPrice float64 `json:"totalPrice"`
	Notes      string  `json:"notes"`
	// Status is free text. Readers normalize it; any client can write any
	// string here.
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// Account represents an employee or customer login record.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	// Password is the unsalted SHA-256 hex digest of the password.
	Password string `json:"password"`
	// Role is a free string: "admin", "staff" or "utilisateur".
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// VehicleLabel returns the reservation's vehicle label, falling back to
// UnknownVehicleLabel when both the reference and the denormalized model
// are absent.
func (r Reservation) VehicleLabel() string {
	if r.VehicleModel != "" {
		return r.VehicleModel
	}
	return UnknownVehicleLabel
}

// CarFromDocument decodes a car document into its typed view. Missing or
// mistyped fields degrade to zero values.
func CarFromDocument(d docstore.Document) Car {
	return Car{
		ID:          d.ID(),
		Model:       docstore.String(d["model"]),
		Category:    docstore.String(d["category"]),
		Year:        int(docstore.Number(d["year"])),
		DailyPrice:  docstore.Number(d["dailyPrice"]),
		Description: docstore.String(d["description"]),
		Available:   docstore.Bool(d["available"]),
		CreatedAt:   docstore.String(d["createdAt"]),
	}
}

// ReservationFromDocument decodes a reservation document into its typed view.
func ReservationFromDocument(d docstore.Document) Reservation {
	return Reservation{
		ID:           d.ID(),
		UserID:       docstore.String(d["userId"]),
		UserEmail:    docstore.String(d["userEmail"]),
		FirstName:    docstore.String(d["firstName"]),
		LastName:     docstore.String(d["lastName"]),
		Phone:        docstore.String(d["phone"]),
		VehicleModel: docstore.String(d["vehicleModel"]),
		VehicleID:    docstore.String(d["vehicleId"]),
		PickupDate:   docstore.String(d["pickupDate"]),
		PickupTime:   docstore.String(d["pickupTime"]),
		ReturnDate:   docstore.String(d["returnDate"]),
		ReturnTime:   docstore.String(d["returnTime"]),
		Days:         int(docstore.Number(d["days"])),
		DailyPrice:   docstore.Number(d["dailyPrice"]),
		TotalPrice:   docstore.Number(d["totalPrice"]),
		Notes:        docstore.String(d["notes"]),
		Status:       docstore.String(d["status"]),
		CreatedAt:    docstore.String(d["createdAt"]),
	}
}

// AccountFromDocument decodes an account document into its typed view.
func AccountFromDocument(d docstore.Document) Account {
	return Account{
		ID:        d.ID(),
		Username:  docstore.String(d["username"]),
		Password:  docstore.String(d["password"]),
		Role:      docstore.String(d["role"]),
		Status:    docstore.String(d["status"]),
		CreatedAt: docstore.String(d["createdAt"]),
	}
}
