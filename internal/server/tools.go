package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"booking-mcp/internal/booking"
)

const unknownError = "Unknown error"

// bookingTools implements get_restaurants, create_booking and update_booking against the booking API.
type bookingTools struct {
	api *booking.Client
}

func (b *bookingTools) register(r *Registry) {
	r.MustRegister(mcp.NewTool("get_restaurants",
		mcp.WithDescription("Get a list of all restaurants"),
	), b.getRestaurants)

	r.MustRegister(mcp.NewTool("create_booking",
		mcp.WithDescription("Create a new restaurant booking"),
		mcp.WithNumber("restaurantId", mcp.Required(), mcp.Description("ID of the restaurant")),
		mcp.WithNumber("tableId", mcp.Required(), mcp.Description("ID of the table")),
		mcp.WithString("customerName", mcp.Required(), mcp.Description("Name of the customer")),
		mcp.WithString("customerEmail", mcp.Required(), mcp.Description("Email of the customer"), emailFormat()),
		mcp.WithString("customerPhone", mcp.Required(), mcp.Description("Phone number of the customer")),
		mcp.WithString("bookingDate", mcp.Required(), mcp.Description("Date of the booking (YYYY-MM-DD)")),
		mcp.WithString("bookingTime", mcp.Required(), mcp.Description("Time of the booking (HH:MM, 24-hour)")),
		mcp.WithNumber("partySize", mcp.Required(), mcp.Description("Number of people in the party")),
		mcp.WithString("specialRequests", mcp.Description("Any special requests")),
	), b.createBooking)

	r.MustRegister(mcp.NewTool("update_booking",
		mcp.WithDescription("Update an existing booking; only the supplied fields are changed"),
		mcp.WithNumber("bookingId", mcp.Required(), mcp.Description("ID of the booking to update")),
		mcp.WithString("customerName", mcp.Description("Name of the customer")),
		mcp.WithString("customerEmail", mcp.Description("Email of the customer"), emailFormat()),
		mcp.WithString("bookingDate", mcp.Description("Date of the booking (YYYY-MM-DD)")),
		mcp.WithString("bookingTime", mcp.Description("Time of the booking (HH:MM, 24-hour)")),
		mcp.WithNumber("partySize", mcp.Description("Number of people in the party")),
		mcp.WithString("specialRequests", mcp.Description("Any special requests")),
		mcp.WithNumber("tableId", mcp.Description("ID of the table")),
	), b.updateBooking)
}

// emailFormat tags a string property with the JSON Schema email format.
func emailFormat() mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["format"] = "email"
	}
}

func (b *bookingTools) getRestaurants(ctx context.Context, _ map[string]any) reply {
	res, err := b.api.ListRestaurants(ctx)
	if err != nil {
		return failure("fetch restaurants", err)
	}
	return success(res)
}

func (b *bookingTools) createBooking(ctx context.Context, args map[string]any) reply {
	nb := booking.NewBooking{
		RestaurantID:    numberArg(args, "restaurantId"),
		TableID:         numberArg(args, "tableId"),
		CustomerName:    stringArg(args, "customerName"),
		CustomerEmail:   stringArg(args, "customerEmail"),
		CustomerPhone:   stringArg(args, "customerPhone"),
		BookingDate:     stringArg(args, "bookingDate"),
		BookingTime:     stringArg(args, "bookingTime"),
		PartySize:       numberArg(args, "partySize"),
		SpecialRequests: stringArg(args, "specialRequests"),
	}
	res, err := b.api.CreateBooking(ctx, nb)
	if err != nil {
		return failure("create booking", err)
	}
	return success(res)
}

// updateBooking reads the booking first and only writes when it exists.
// The fetched booking is not merged into the patch; the backend applies the sparse update.
func (b *bookingTools) updateBooking(ctx context.Context, args map[string]any) reply {
	id := numberArg(args, "bookingId")
	if _, err := b.api.GetBooking(ctx, id); err != nil {
		return failure("fetch booking "+booking.FormatID(id), err)
	}

	patch := booking.NewPatch()
	for _, name := range booking.UpdatableFields {
		if v, ok := args[name]; ok {
			patch.Set(name, v)
		}
	}
	res, err := b.api.UpdateBooking(ctx, id, patch)
	if err != nil {
		return failure("update booking "+booking.FormatID(id), err)
	}
	return success(res)
}

// success relays the backend body as two-space indented JSON, without HTML escaping.
func success(v any) reply {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return reply{text: "Error formatting response: " + errorMessage(err), outcome: outcomeTransportError}
	}
	return reply{text: strings.TrimSuffix(buf.String(), "\n"), outcome: outcomeOK}
}

// failure renders a backend status error or a transport error as reply text.
func failure(action string, err error) reply {
	var serr *booking.StatusError
	if errors.As(err, &serr) {
		text := fmt.Sprintf("Failed to %s: %d %s", action, serr.Code, serr.Status)
		if serr.Body != "" {
			text += " - " + serr.Body
		}
		return reply{text: text, outcome: outcomeBackendError}
	}
	return reply{text: fmt.Sprintf("Error while trying to %s: %s", action, errorMessage(err)), outcome: outcomeTransportError}
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return unknownError
	}
	return err.Error()
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func numberArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}
