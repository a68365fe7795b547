package api

// Calendar dates travel as YYYY-MM-DD strings, timestamps as the server
// formats them; the client never reinterprets server time.

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the issued token plus the user summary.
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	HotelID  *int64 `json:"hotelId"`
}

// RegisterRequest creates a guest account.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UserResponse is an account record as the auth endpoints return it.
type UserResponse struct {
	ID           int64  `json:"id"`
	PublicUserID string `json:"publicUserId"`
	Username     string `json:"username"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Enabled      bool   `json:"enabled"`
	HotelID      *int64 `json:"hotelId"`
}

// AdminUser is an account row from the admin user list.
type AdminUser struct {
	UserID       int64  `json:"userId"`
	PublicUserID string `json:"publicUserId"`
	Username     string `json:"username"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Enabled      bool   `json:"enabled"`
	HotelID      *int64 `json:"hotelId"`
}

// ChangePasswordRequest rotates the current account's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// Hotel is a hotel directory/search entry.
type Hotel struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	City           string  `json:"city"`
	Address        string  `json:"address"`
	StarRating     float64 `json:"starRating"`
	Description    string  `json:"description,omitempty"`
	Amenities      string  `json:"amenities,omitempty"`
	AvailableRooms int     `json:"availableRooms"`
	TotalRooms     int     `json:"totalRooms"`
	Status         string  `json:"status,omitempty"`
	ImageURL       string  `json:"imageUrl,omitempty"`
}

// HotelDetail is the full hotel record.
type HotelDetail struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Description    string  `json:"description,omitempty"`
	Address        string  `json:"address"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Country        string  `json:"country"`
	ContactNumber  string  `json:"contactNumber"`
	Email          string  `json:"email"`
	StarRating     float64 `json:"starRating"`
	Amenities      string  `json:"amenities,omitempty"`
	Status         string  `json:"status"`
	TotalRooms     int     `json:"totalRooms"`
	AvailableRooms int     `json:"availableRooms"`
	ImageURL       string  `json:"imageUrl,omitempty"`
}

// CreateHotelRequest registers a new hotel (admin).
type CreateHotelRequest struct {
	Name          string  `json:"name" validate:"required"`
	Category      string  `json:"category" validate:"required"`
	Description   string  `json:"description"`
	City          string  `json:"city" validate:"required"`
	Address       string  `json:"address" validate:"required"`
	State         string  `json:"state"`
	Country       string  `json:"country"`
	Pincode       string  `json:"pincode"`
	ContactNumber string  `json:"contactNumber"`
	Email         string  `json:"email" validate:"omitempty,email"`
	StarRating    float64 `json:"starRating" validate:"omitempty,min=1,max=5"`
	Amenities     string  `json:"amenities"`
	Status        string  `json:"status"`
	ImageURL      string  `json:"imageUrl,omitempty"`
}

// CreateStaffRequest creates a staff account bound to a hotel (admin).
type CreateStaffRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=MANAGER RECEPTIONIST"`
}

// Room is a room record.
type Room struct {
	ID            int64   `json:"id"`
	HotelID       int64   `json:"hotelId"`
	RoomNumber    string  `json:"roomNumber"`
	RoomType      string  `json:"roomType"`
	PricePerNight float64 `json:"pricePerNight"`
	MaxOccupancy  int     `json:"maxOccupancy"`
	Status        string  `json:"status"`
	Amenities     string  `json:"amenities,omitempty"`
	Description   string  `json:"description,omitempty"`
	IsActive      bool    `json:"isActive"`
}

// CreateRoomRequest adds a room to a hotel (manager).
type CreateRoomRequest struct {
	HotelID       int64   `json:"hotelId" validate:"required"`
	RoomNumber    string  `json:"roomNumber" validate:"required"`
	RoomType      string  `json:"roomType" validate:"required"`
	PricePerNight float64 `json:"pricePerNight" validate:"required,gt=0"`
	MaxOccupancy  int     `json:"maxOccupancy" validate:"required,min=1"`
	Amenities     string  `json:"amenities"`
	Description   string  `json:"description"`
}

// UpdateRoomRequest replaces a room's mutable fields (manager).
type UpdateRoomRequest struct {
	RoomNumber    string  `json:"roomNumber" validate:"required"`
	RoomType      string  `json:"roomType" validate:"required"`
	PricePerNight float64 `json:"pricePerNight" validate:"required,gt=0"`
	MaxOccupancy  int     `json:"maxOccupancy" validate:"required,min=1"`
	Amenities     string  `json:"amenities"`
	Description   string  `json:"description"`
}

// BlockRoomRequest takes a room out of availability for a date range.
type BlockRoomRequest struct {
	RoomID    int64  `json:"roomId" validate:"required"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason"`
}

// UnblockRoomRequest releases a previous block.
type UnblockRoomRequest struct {
	RoomID    int64  `json:"roomId" validate:"required"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// AvailableRoom is one free room inside an availability response.
type AvailableRoom struct {
	RoomID        int64   `json:"roomId"`
	RoomNumber    string  `json:"roomNumber"`
	RoomType      string  `json:"roomType"`
	PricePerNight float64 `json:"pricePerNight"`
	MaxOccupancy  int     `json:"maxOccupancy"`
	Amenities     string  `json:"amenities,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// Availability is the point-in-time answer to "which rooms of hotel H are
// free for [checkIn, checkOut)". It is never cached and is discarded in
// full when the range changes.
type Availability struct {
	HotelID        int64           `json:"hotelId"`
	TotalRooms     int             `json:"totalRooms"`
	AvailableRooms int             `json:"availableRooms"`
	Rooms          []AvailableRoom `json:"availableRoomsList"`
}

// CreateBookingRequest creates a public booking.
type CreateBookingRequest struct {
	HotelID         int64  `json:"hotelId" validate:"required"`
	RoomID          int64  `json:"roomId" validate:"required"`
	CheckInDate     string `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate    string `json:"checkOutDate" validate:"required,datetime=2006-01-02"`
	NumberOfGuests  int    `json:"numberOfGuests" validate:"required,min=1"`
	Rooms           int    `json:"rooms,omitempty"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

// WalkInBookingRequest creates a staff-assisted booking for a guest at
// the desk.
type WalkInBookingRequest struct {
	HotelID         int64  `json:"hotelId" validate:"required"`
	RoomID          int64  `json:"roomId" validate:"required"`
	CheckInDate     string `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate    string `json:"checkOutDate" validate:"required,datetime=2006-01-02"`
	GuestName       string `json:"guestName" validate:"required"`
	GuestEmail      string `json:"guestEmail" validate:"required,email"`
	GuestPhone      string `json:"guestPhone,omitempty"`
	NumberOfGuests  int    `json:"numberOfGuests" validate:"required,min=1"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

// CancelBookingRequest carries the mandatory cancellation reason.
type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// CheckInRequest starts the stay.
type CheckInRequest struct {
	Notes string `json:"notes,omitempty"`
}

// CheckOutRequest ends the stay.
type CheckOutRequest struct {
	Notes        string `json:"notes,omitempty"`
	Rating       int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Feedback     string `json:"feedback,omitempty"`
	LateCheckOut bool   `json:"lateCheckOut,omitempty"`
}

// Booking is a reservation as the server reports it. Status only ever
// changes here by replacing the struct with a server response.
type Booking struct {
	ID                 int64   `json:"id"`
	UserID             int64   `json:"userId"`
	HotelID            int64   `json:"hotelId"`
	RoomID             int64   `json:"roomId"`
	RoomNumber         string  `json:"roomNumber,omitempty"`
	RoomType           string  `json:"roomType,omitempty"`
	CheckInDate        string  `json:"checkInDate"`
	CheckOutDate       string  `json:"checkOutDate"`
	TotalAmount        float64 `json:"totalAmount"`
	Status             string  `json:"status"`
	BookingSource      string  `json:"bookingSource,omitempty"`
	GuestName          string  `json:"guestName,omitempty"`
	GuestEmail         string  `json:"guestEmail,omitempty"`
	GuestPhone         string  `json:"guestPhone,omitempty"`
	NumberOfGuests     int     `json:"numberOfGuests"`
	NumberOfNights     int     `json:"numberOfNights,omitempty"`
	SpecialRequests    string  `json:"specialRequests,omitempty"`
	CancellationReason string  `json:"cancellationReason,omitempty"`
	CancelledAt        string  `json:"cancelledAt,omitempty"`
	CheckedInAt        string  `json:"checkedInAt,omitempty"`
	CheckedOutAt       string  `json:"checkedOutAt,omitempty"`
	CreatedAt          string  `json:"createdAt,omitempty"`
	UpdatedAt          string  `json:"updatedAt,omitempty"`
}

// Bill is the financial record tied one-to-one to a booking.
type Bill struct {
	ID           int64   `json:"id"`
	BookingID    int64   `json:"bookingId"`
	UserID       int64   `json:"userId"`
	HotelID      int64   `json:"hotelId"`
	RoomID       int64   `json:"roomId"`
	CheckInDate  string  `json:"checkInDate"`
	CheckOutDate string  `json:"checkOutDate"`
	TotalAmount  float64 `json:"totalAmount"`
	Status       string  `json:"status"`
	BillNumber   string  `json:"billNumber"`
	GeneratedAt  string  `json:"generatedAt"`
	PaidAt       string  `json:"paidAt,omitempty"`
	CreatedAt    string  `json:"createdAt,omitempty"`
	UpdatedAt    string  `json:"updatedAt,omitempty"`
}

// MarkBillPaidRequest records payment of a bill.
type MarkBillPaidRequest struct {
	PaymentMethod    string `json:"paymentMethod" validate:"required"`
	TransactionID    string `json:"transactionId,omitempty"`
	PaymentReference string `json:"paymentReference,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// Payment is one settled payment record.
type Payment struct {
	ID               int64   `json:"id"`
	BillID           int64   `json:"billId"`
	BookingID        int64   `json:"bookingId"`
	UserID           int64   `json:"userId"`
	Amount           float64 `json:"amount"`
	PaymentMethod    string  `json:"paymentMethod"`
	TransactionID    string  `json:"transactionId,omitempty"`
	PaymentReference string  `json:"paymentReference,omitempty"`
	Notes            string  `json:"notes,omitempty"`
	PaidBy           string  `json:"paidBy,omitempty"`
	PaidAt           string  `json:"paidAt"`
	CreatedAt        string  `json:"createdAt,omitempty"`
}

// TrendPoint is one point in a dashboard time series.
type TrendPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// StatusCount is one slice of the booking status distribution.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// HotelRevenue is per-hotel revenue on the admin dashboard.
type HotelRevenue struct {
	HotelID   int64   `json:"hotelId"`
	HotelName string  `json:"hotelName"`
	Revenue   float64 `json:"revenue"`
}

// Dashboard is the metrics payload for the admin and manager dashboards;
// the manager variant simply omits the per-hotel breakdown.
type Dashboard struct {
	TotalRevenue              float64        `json:"totalRevenue"`
	MonthlyRevenue            float64        `json:"monthlyRevenue"`
	TotalBookings             int64          `json:"totalBookings"`
	TotalCheckIns             int64          `json:"totalCheckIns"`
	TotalCheckOuts            int64          `json:"totalCheckOuts"`
	AverageRating             float64        `json:"averageRating"`
	RevenueByHotel            []HotelRevenue `json:"revenueByHotel,omitempty"`
	RevenueTrend              []TrendPoint   `json:"revenueTrend,omitempty"`
	BookingTrend              []TrendPoint   `json:"bookingTrend,omitempty"`
	BookingStatusDistribution []StatusCount  `json:"bookingStatusDistribution,omitempty"`
}

// HotelReport is one row of the cross-hotel performance report.
type HotelReport struct {
	HotelID       int64   `json:"hotelId"`
	HotelName     string  `json:"hotelName"`
	City          string  `json:"city,omitempty"`
	TotalBookings int64   `json:"totalBookings"`
	TotalRevenue  float64 `json:"totalRevenue"`
	OccupancyRate float64 `json:"occupancyRate"`
	AverageRating float64 `json:"averageRating"`
}
