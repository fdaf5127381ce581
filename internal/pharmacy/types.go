package pharmacy

// Kind names one of the upstream resource collections.
type Kind string

const (
	KindMedicines    Kind = "medicines"
	KindDoctors      Kind = "doctors"
	KindAppointments Kind = "appointments"
)

// Valid reports whether k is one of the known collections.
func (k Kind) Valid() bool {
	switch k {
	case KindMedicines, KindDoctors, KindAppointments:
		return true
	}
	return false
}

// Record is an upstream row as returned by the API. The gateway only
// interprets the fields it renders and edits; everything else passes
// through untouched on update.
type Record map[string]any

// Medicine mirrors the upstream medicine serializer. Price stays a string:
// the API serializes decimals as strings and the gateway never does
// arithmetic on it.
type Medicine struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         string `json:"price"`
	StockQuantity int    `json:"stock_quantity"`
	Image         string `json:"image,omitempty"`
}

// Doctor mirrors the upstream doctor serializer.
type Doctor struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Specialty   string `json:"specialty"`
	IsAvailable bool   `json:"is_available"`
}

// Appointment mirrors the upstream appointment serializer. IDs are UUIDs
// upstream, so they stay strings here.
type Appointment struct {
	ID           string `json:"id"`
	Doctor       int64  `json:"doctor"`
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Date         string `json:"date"`
	IsVerified   bool   `json:"is_verified,omitempty"`
}

// Sale is one row of the public sales feed.
type Sale struct {
	ID           int64  `json:"id"`
	MedicineName string `json:"medicine_name"`
	QuantitySold int    `json:"quantity_sold"`
	Timestamp    string `json:"timestamp"`
}

// Credentials is the login/register request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is the login/register response body.
type AuthResult struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
}

// BookingRequest is the public appointment-booking body.
type BookingRequest struct {
	Doctor       int64  `json:"doctor"`
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Date         string `json:"date"`
}

// Auth carries the credentials a mutating call attaches: the session token
// and the anti-forgery value echoed from the upstream cookie.
type Auth struct {
	Token string
	CSRF  string
}
