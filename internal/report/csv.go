// Package report assembles downloadable CSV exports of the entry tables.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"meterdesk/internal/domain"
)

const dateLayout = "2006-01-02"

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Tasks renders tasks joined against the meter registry. Unset completion
// fields render as empty cells.
func Tasks(tasks []domain.Task, meters map[string]domain.Meter, users map[string]domain.User) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"account_number", "subscriber_name", "meter_number", "address", "feeder",
		"assigned_to", "task_date", "status", "meter_reading", "location_lat", "location_lng", "completed_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		m := meters[t.MeterID]
		assignee := users[t.AssignedUserID].Username
		row := []string{
			m.AccountNumber, m.SubscriberName, m.MeterNumber, m.Address, m.Feeder,
			assignee,
			t.TaskDate.Format(dateLayout),
			string(t.Status),
			optFloat(t.MeterReading),
			optFloat(t.LocationLat),
			optFloat(t.LocationLng),
			optTime(t.CompletedAt),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv write failed: %w", err)
	}
	return buf.Bytes(), nil
}

func Subscribers(readings []domain.SubscriberReading) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"account_number", "subscriber_name", "subscription_class", "meter_number", "reading", "reading_date"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range readings {
		row := []string{
			r.AccountNumber, r.SubscriberName, r.SubscriptionClass, r.MeterNumber,
			fmtFloat(r.Reading), r.ReadingDate.Format(dateLayout),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv write failed: %w", err)
	}
	return buf.Bytes(), nil
}

func Feeders(readings []domain.FeederReading) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"station", "feeder", "voltage", "meter_number", "meter_type", "reading", "reading_date"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range readings {
		row := []string{
			r.Station, r.Feeder, r.Voltage, r.MeterNumber, r.MeterType,
			fmtFloat(r.Reading), r.ReadingDate.Format(dateLayout),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv write failed: %w", err)
	}
	return buf.Bytes(), nil
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return fmtFloat(*f)
}

func optTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
