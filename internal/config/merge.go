package config

import (
	"strings"

	"github.com/phyten/humanpp/internal/model"
)

func boolPtr(v bool) *bool {
	b := v
	return &b
}

// Merge applies layers over base in order; later layers win.
func Merge(base Settings, layers ...Config) Settings {
	out := base.Clone()
	for _, layer := range layers {
		out.Enabled = ResolveBool(out.Enabled, layer.Enabled)
		out.DebounceMS = ResolveInt(out.DebounceMS, layer.DebounceMS)
		out.Markers = mergeMarkers(out.Markers, layer.Markers)
		out.Style = model.Style(strings.ToLower(ResolveAndTrim(string(out.Style), layer.Style)))
		out.Diagnostics = mergeDiagnostics(out.Diagnostics, layer.Diagnostics)
		out.Colors.Marker = ResolveAndTrim(out.Colors.Marker, layer.Colors.Marker)
		out.Colors.MarkerText = ResolveAndTrim(out.Colors.MarkerText, layer.Colors.MarkerText)
		out.Colors.Background = ResolveAndTrim(out.Colors.Background, layer.Colors.Background)
		out.MessageWidth = ResolveInt(out.MessageWidth, layer.MessageWidth)
		out.Scan = mergeScan(out.Scan, layer.Scan)
	}
	if strings.TrimSpace(string(out.Style)) == "" {
		out.Style = model.StyleBoth
	}
	if strings.TrimSpace(out.Scan.Output) == "" {
		out.Scan.Output = "table"
	}
	if strings.TrimSpace(out.Scan.Color) == "" {
		out.Scan.Color = "auto"
	}
	return out
}

func mergeMarkers(out MarkerSettings, layer MarkersConfig) MarkerSettings {
	out.Intervention = ResolveBool(out.Intervention, layer.Intervention)
	out.Uncertainty = ResolveBool(out.Uncertainty, layer.Uncertainty)
	out.Directive = ResolveBool(out.Directive, layer.Directive)
	out.Keywords = ResolveBool(out.Keywords, layer.Keywords)
	out.Aliases = ResolveAliases(out.Aliases, layer.Aliases)
	return out
}

func mergeDiagnostics(out DiagnosticSettings, layer DiagnosticsConfig) DiagnosticSettings {
	out.Error = ResolveBool(out.Error, layer.Error)
	out.Warning = ResolveBool(out.Warning, layer.Warning)
	out.Info = ResolveBool(out.Info, layer.Info)
	out.Hint = ResolveBool(out.Hint, layer.Hint)
	return out
}

func mergeScan(out ScanSettings, layer ScanConfig) ScanSettings {
	out.Excludes = ResolveStrings(out.Excludes, layer.Excludes)
	out.ExcludeTypical = ResolveBool(out.ExcludeTypical, layer.ExcludeTypical)
	out.DetectLangs = ResolveStrings(out.DetectLangs, layer.DetectLangs)
	out.Jobs = ResolveInt(out.Jobs, layer.Jobs)
	out.MaxFileBytes = ResolveInt(out.MaxFileBytes, layer.MaxFileBytes)
	out.Output = strings.ToLower(ResolveAndTrim(out.Output, layer.Output))
	out.Fields = ResolveAndTrim(out.Fields, layer.Fields)
	out.Color = strings.ToLower(ResolveAndTrim(out.Color, layer.Color))
	return out
}
