package api

import "context"

// AdminDashboard fetches the cross-hotel dashboard metrics.
func (c *Client) AdminDashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := c.doGet(ctx, "/reports/dashboard/admin", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ManagerDashboard fetches the dashboard for the manager's own hotel.
func (c *Client) ManagerDashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := c.doGet(ctx, "/reports/dashboard/manager", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// HotelReports fetches the per-hotel performance report.
func (c *Client) HotelReports(ctx context.Context) ([]HotelReport, error) {
	var reports []HotelReport
	if err := c.doGet(ctx, "/reports/hotels", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
