package models

import (
	"strings"
	"time"
)

// ClientProfile is the buyer-side account shown on the client dashboard.
type ClientProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Contact  string `json:"contact"`
}

// ClientRegistration backs the client sign-up form.
type ClientRegistration struct {
	Name     string `form:"name" json:"name" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password,omitempty" binding:"required"`
	Company  string `form:"company" json:"company"`
	Location string `form:"location" json:"location"`
	Contact  string `form:"contact" json:"contact"`
}

// Normalize trims every field except the password.
func (r *ClientRegistration) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Company = strings.TrimSpace(r.Company)
	r.Location = strings.TrimSpace(r.Location)
	r.Contact = strings.TrimSpace(r.Contact)
}

func (r ClientRegistration) Profile() ClientProfile {
	return ClientProfile{
		Name:     r.Name,
		Email:    r.Email,
		Company:  r.Company,
		Location: r.Location,
		Contact:  r.Contact,
	}
}

// RegisterForm is the register page, echoing input back on error.
type RegisterForm struct {
	Input ClientRegistration `json:"input"`
	Error string             `json:"error,omitempty"`
}

type HarvestSection struct {
	Name            string    `json:"name"`
	Crop            string    `json:"crop"`
	ExpectedHarvest time.Time `json:"expectedHarvest"`
	EstimatedYield  float64   `json:"estimatedYieldKg"`
}

type Deal struct {
	ID       string     `json:"id"`
	FarmID   int        `json:"farmId"`
	Crop     string     `json:"crop"`
	Status   DealStatus `json:"status"`
	Quantity float64    `json:"quantityKg"`
}

type DealStatus string

const (
	DealOpen      DealStatus = "open"
	DealCompleted DealStatus = "completed"
	DealCanceled  DealStatus = "canceled"
)

// ClientFarm is a farm as a client sees it. Only accessed farms expose their
// sections.
type ClientFarm struct {
	ID       int              `json:"id"`
	Name     string           `json:"name"`
	Location string           `json:"location"`
	Crops    []string         `json:"crops"`
	Accessed bool             `json:"accessed"`
	Sections []HarvestSection `json:"sections,omitempty"`
}

// ClientSummary is the dashboard's summary bar.
type ClientSummary struct {
	AccessedFarms   int `json:"accessedFarms"`
	HarvestSections int `json:"harvestSections"`
	CompletedDeals  int `json:"completedDeals"`
	CanceledDeals   int `json:"canceledDeals"`
	// NetProgress is completed deals as a percentage of closed deals.
	NetProgress int `json:"netProgress"`
}

// Farm list tabs on the client dashboard.
const (
	FarmsAccessed    = "accessed"
	FarmsNotAccessed = "not-accessed"
)

type ClientDashboard struct {
	Profile ClientProfile `json:"profile"`
	Summary ClientSummary `json:"summary"`
	Tab     string        `json:"tab"`
	Farms   []ClientFarm  `json:"farms"`
}

type ClientFarmDetail struct {
	Farm  ClientFarm `json:"farm"`
	Deals []Deal     `json:"deals"`
}

// Portal is one entry on the start page.
type Portal struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

var Portals = []Portal{
	{Name: "Farm User Portal", URL: "/farm-user/login", Description: "Login as a farm user to manage your farm operations."},
	{Name: "Client User Portal", URL: "/client-user/login", Description: "Login as a client to access your dashboard and services."},
	{Name: "End User Portal", URL: "/end-user/portal", Description: "Scan products and get details as an end user."},
}

// ProductLookup is the end-user portal. Product is nil until a code matches.
type ProductLookup struct {
	Code    string   `form:"code" json:"code,omitempty"`
	Product *Product `json:"product,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Product is a harvest batch traced back to its farm.
type Product struct {
	Code      string    `json:"code"`
	Crop      string    `json:"crop"`
	FarmName  string    `json:"farmName"`
	Section   string    `json:"section"`
	Harvested time.Time `json:"harvested"`
}
