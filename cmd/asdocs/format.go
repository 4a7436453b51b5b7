package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"asdocs/internal/version"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatYAML  OutputFormat = "yaml"
)

var (
	headingColor = color.New(color.Bold)
	okColor      = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	dimColor     = color.New(color.Faint)
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatHuman, FormatYAML:
		return f, nil
	case "":
		return FormatHuman, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *DescribeResponse:
		return formatDescribeHuman(v)
	case *ListResponse:
		return formatListHuman(v)
	case *WarmResponse:
		return formatWarmHuman(v)
	case *ConfigInitResponse:
		return fmt.Sprintf("%s Wrote %s", okColor.Sprint("✓"), v.Path), nil
	case *VersionResponse:
		return version.Full(), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func heading(b *strings.Builder, title string) {
	b.WriteString(headingColor.Sprint(title) + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
}

func formatDescribeHuman(resp *DescribeResponse) (string, error) {
	var b strings.Builder

	title := fmt.Sprintf("%s (%s)", resp.Symbol, resp.Kind)
	if resp.Parameter != "" {
		title = fmt.Sprintf("%s, parameter %s", title, resp.Parameter)
	}
	heading(&b, title)

	if resp.Found {
		b.WriteString(resp.Documentation + "\n")
	} else {
		b.WriteString(failColor.Sprint("✗") + " No documentation found\n")
	}

	if resp.Source != nil {
		b.WriteString("\n")
		writeSource(&b, resp.Source)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func writeSource(b *strings.Builder, src *SourceInfo) {
	if src.Code != "" {
		b.WriteString(fmt.Sprintf("Source: none (%s)\n", src.Code))
		b.WriteString(dimColor.Sprintf("  %s", src.Message) + "\n")
		return
	}
	b.WriteString(fmt.Sprintf("Source: %s, %d entries\n", src.Tier, src.Entries))
	b.WriteString(fmt.Sprintf("  %s\n", src.Path))
}

func formatListHuman(resp *ListResponse) (string, error) {
	var b strings.Builder

	heading(&b, "Documented names in "+resp.Archive)
	writeSource(&b, resp.Source)
	if len(resp.Names) > 0 {
		b.WriteString("\n")
	}
	for _, name := range resp.Names {
		b.WriteString("  " + name + "\n")
	}
	if resp.Total != len(resp.Names) {
		b.WriteString(fmt.Sprintf("\n%d of %d names match\n", len(resp.Names), resp.Total))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func formatWarmHuman(resp *WarmResponse) (string, error) {
	var b strings.Builder

	heading(&b, "Warmed archives under "+resp.Dir)
	b.WriteString(fmt.Sprintf("Archives:   %d\n", resp.Archives))
	b.WriteString(fmt.Sprintf("Documented: %d\n", resp.Documented))
	failed := fmt.Sprintf("%d", resp.Failed)
	if resp.Failed > 0 {
		failed = failColor.Sprint(failed)
	}
	b.WriteString(fmt.Sprintf("Failed:     %s\n", failed))
	b.WriteString(fmt.Sprintf("Duration:   %dms\n", resp.DurationMs))

	if resp.Cache != nil {
		b.WriteString("\nPersistent cache:\n")
		b.WriteString(fmt.Sprintf("  Archives: %d (%d documented, %d failed)\n",
			resp.Cache.Archives, resp.Cache.Documented, resp.Cache.Failed))
		b.WriteString(fmt.Sprintf("  Entries: %d\n", resp.Cache.Entries))
		b.WriteString(fmt.Sprintf("  Payload: %s\n", formatBytes(resp.Cache.PayloadBytes)))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// formatBytes formats byte size in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
