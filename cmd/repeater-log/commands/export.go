package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ahesford/bonjour-repeater/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

// jsonEvent mirrors log.Event with readable JSON field names. The CBOR
// integer keys would otherwise leak into the export.
type jsonEvent struct {
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Instance  string `json:"instance,omitempty"`
	Service   string `json:"service,omitempty"`
	Domain    string `json:"domain,omitempty"`
	IfIndex   int    `json:"if_index,omitempty"`
	Mirror    string `json:"mirror,omitempty"`
	Host      string `json:"host,omitempty"`
	Port      uint16 `json:"port,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		out := jsonEvent{
			Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			SessionID: event.SessionID,
			Action:    event.Action.String(),
			Instance:  event.Instance,
			Service:   event.Service,
			Domain:    event.Domain,
			IfIndex:   event.IfIndex,
			Mirror:    event.Mirror,
			Host:      event.Host,
			Port:      event.Port,
			Reason:    event.Reason,
		}
		if err := encoder.Encode(out); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Write header
	header := []string{"timestamp", "session_id", "action", "instance", "service", "domain", "if_index", "mirror", "host", "port", "reason"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		port := ""
		if event.Port != 0 {
			port = strconv.Itoa(int(event.Port))
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.Action.String(),
			event.Instance,
			event.Service,
			event.Domain,
			strconv.Itoa(event.IfIndex),
			event.Mirror,
			event.Host,
			port,
			event.Reason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
