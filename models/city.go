package models

import "time"

// City represents a city coordinate record as stored in the cities table
type City struct {
	ID        int64     `json:"id" db:"id"`
	LatD      int       `json:"lat_d" db:"lat_d"`
	NS        string    `json:"ns" db:"ns"`
	LongD     int       `json:"long_d" db:"long_d"`
	EW        string    `json:"ew" db:"ew"`
	Name      string    `json:"city" db:"city"`
	State     string    `json:"state" db:"state"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the City model
func (City) TableName() string {
	return "cities"
}

// NewCity creates a new City instance
func NewCity(latD int, ns string, longD int, ew, name, state string) *City {
	now := time.Now().UTC()
	return &City{
		LatD:      latD,
		NS:        ns,
		LongD:     longD,
		EW:        ew,
		Name:      name,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CityRequest is the request body for creating or updating a city
type CityRequest struct {
	LatD  int    `json:"latD" validate:"gte=0,lte=90"`
	NS    string `json:"ns" validate:"max=2"`
	LongD int    `json:"longD" validate:"gte=0,lte=180"`
	EW    string `json:"ew" validate:"max=2"`
	City  string `json:"city" validate:"required,max=100"`
	State string `json:"state" validate:"max=100"`
}

// CityResponse is the public representation of a city
type CityResponse struct {
	ID    int64  `json:"id"`
	LatD  int    `json:"latD"`
	NS    string `json:"ns"`
	LongD int    `json:"longD"`
	EW    string `json:"ew"`
	City  string `json:"city"`
	State string `json:"state"`
}

// CityFromRequest builds a new, unsaved City from a request body
func CityFromRequest(req CityRequest) *City {
	return NewCity(req.LatD, req.NS, req.LongD, req.EW, req.City, req.State)
}

// ApplyCityRequest copies every field of req onto c
func ApplyCityRequest(c *City, req CityRequest) {
	c.LatD = req.LatD
	c.NS = req.NS
	c.LongD = req.LongD
	c.EW = req.EW
	c.Name = req.City
	c.State = req.State
	c.UpdatedAt = time.Now().UTC()
}

// ToCityResponse maps a stored city to its public representation
func ToCityResponse(c *City) CityResponse {
	return CityResponse{
		ID:    c.ID,
		LatD:  c.LatD,
		NS:    c.NS,
		LongD: c.LongD,
		EW:    c.EW,
		City:  c.Name,
		State: c.State,
	}
}

// ToCityResponses maps a slice of stored cities
func ToCityResponses(cities []*City) []CityResponse {
	out := make([]CityResponse, 0, len(cities))
	for _, c := range cities {
		out = append(out, ToCityResponse(c))
	}
	return out
}
