package api

import (
	"context"
	"fmt"
	"net/url"
)

const hotelsCacheKey = "hotels:all"

// ListHotels returns the full hotel directory, with an optional Redis
// read-through cache (the directory changes rarely; availability does
// not come from here).
func (c *Client) ListHotels(ctx context.Context) ([]Hotel, error) {
	var hotels []Hotel
	if c.readCache(ctx, hotelsCacheKey, &hotels) {
		return hotels, nil
	}
	if err := c.doGet(ctx, "/hotels", nil, &hotels); err != nil {
		return nil, err
	}
	c.writeCache(ctx, hotelsCacheKey, hotels)
	return hotels, nil
}

// SearchHotels filters the directory by city and/or category.
func (c *Client) SearchHotels(ctx context.Context, city, category string) ([]Hotel, error) {
	query := url.Values{}
	if city != "" {
		query.Set("city", city)
	}
	if category != "" {
		query.Set("category", category)
	}
	var hotels []Hotel
	if err := c.doGet(ctx, "/hotels/search", query, &hotels); err != nil {
		return nil, err
	}
	return hotels, nil
}

// GetHotel fetches one hotel.
func (c *Client) GetHotel(ctx context.Context, hotelID int64) (*HotelDetail, error) {
	var hotel HotelDetail
	if err := c.doGet(ctx, fmt.Sprintf("/hotels/%d", hotelID), nil, &hotel); err != nil {
		return nil, err
	}
	return &hotel, nil
}

// GetHotelRooms lists the rooms of one hotel.
func (c *Client) GetHotelRooms(ctx context.Context, hotelID int64) ([]Room, error) {
	var rooms []Room
	if err := c.doGet(ctx, fmt.Sprintf("/hotels/rooms/hotel/%d", hotelID), nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateHotel registers a new hotel (admin).
func (c *Client) CreateHotel(ctx context.Context, req CreateHotelRequest) (*HotelDetail, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid hotel request: %w", err)
	}
	var hotel HotelDetail
	if err := c.doPost(ctx, "/hotels", req, &hotel); err != nil {
		return nil, err
	}
	c.dropCache(ctx, hotelsCacheKey)
	return &hotel, nil
}

// UpdateHotel replaces a hotel's mutable fields (manager/admin).
func (c *Client) UpdateHotel(ctx context.Context, hotelID int64, req CreateHotelRequest) (*HotelDetail, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid hotel request: %w", err)
	}
	var hotel HotelDetail
	if err := c.doPut(ctx, fmt.Sprintf("/hotels/%d", hotelID), req, &hotel); err != nil {
		return nil, err
	}
	c.dropCache(ctx, hotelsCacheKey)
	return &hotel, nil
}

// CreateStaff creates a staff account bound to a hotel (admin).
func (c *Client) CreateStaff(ctx context.Context, hotelID int64, req CreateStaffRequest) (*UserResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid staff request: %w", err)
	}
	var user UserResponse
	if err := c.doPost(ctx, fmt.Sprintf("/hotels/%d/staff", hotelID), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateRoom adds a room to a hotel (manager).
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (*Room, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid room request: %w", err)
	}
	var room Room
	if err := c.doPost(ctx, "/hotels/rooms", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateRoom replaces a room's mutable fields (manager).
func (c *Client) UpdateRoom(ctx context.Context, roomID int64, req UpdateRoomRequest) (*Room, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid room request: %w", err)
	}
	var room Room
	if err := c.doPut(ctx, fmt.Sprintf("/hotels/rooms/%d", roomID), req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateRoomStatus patches just the operational status of a room.
func (c *Client) UpdateRoomStatus(ctx context.Context, roomID int64, status string) error {
	query := url.Values{"status": []string{status}}
	return c.doPatch(ctx, fmt.Sprintf("/hotels/rooms/%d/status", roomID), query, nil)
}

// DeleteRoom removes a room (manager).
func (c *Client) DeleteRoom(ctx context.Context, roomID int64) error {
	return c.doDelete(ctx, fmt.Sprintf("/hotels/rooms/%d", roomID))
}

// BlockRoom takes a room out of availability for a date range.
func (c *Client) BlockRoom(ctx context.Context, req BlockRoomRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid block request: %w", err)
	}
	return c.doPost(ctx, "/hotels/availability/block", req, nil)
}

// UnblockRoom releases a previous block.
func (c *Client) UnblockRoom(ctx context.Context, req UnblockRoomRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid unblock request: %w", err)
	}
	return c.doPost(ctx, "/hotels/availability/unblock", req, nil)
}

func (c *Client) dropCache(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, key).Err()
}
