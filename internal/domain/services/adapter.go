package services

import (
	"fmt"

	"apkrisk/internal/domain/models"
	"apkrisk/pkg/logger"
)

// specIndex resolves a metric name to its intrinsic kind/source. Weights and
// caps are per-job configuration; kind and source are not.
var specIndex = func() map[string]models.MetricSpec {
	idx := make(map[string]models.MetricSpec)
	for _, spec := range models.DefaultCatalog() {
		idx[spec.Name] = spec
	}
	return idx
}()

// extractorMetrics maps each extractor to the metrics it feeds, so an
// unavailable extractor can mark exactly its own metrics unavailable.
var extractorMetrics = map[string][]string{
	models.ExtractorManifest:        {"component_exposure"},
	models.ExtractorPermissions:     {"permission_density"},
	models.ExtractorNetworkSecurity: {"cleartext_traffic_permitted", "missing_certificate_pinning", "debug_overrides"},
	models.ExtractorSecrets:         {"hardcoded_secret_count"},
	models.ExtractorDependencies:    {"vulnerable_dependency_count"},
	models.ExtractorCrypto:          {"expired_certificate", "self_signed_certificate"},
	models.ExtractorSignature:       {"untrusted_signature"},
	models.ExtractorYARA:            {"yara_match_count"},
}

// optionalCapability names the backing tool for each optional extractor,
// used to render the install hint in the unavailability notice.
type optionalCapability struct {
	Feature    string
	Dependency string
	Capability string
}

var optionalCapabilities = map[string]optionalCapability{
	models.ExtractorNetworkSecurity: {"network security analysis", "apktool", "network security config inspection"},
	models.ExtractorSecrets:         {"secret scanning", "jadx", "decompiled source secret detection"},
	models.ExtractorDependencies:    {"dependency audit", "osv-scanner", "vulnerable dependency detection"},
	models.ExtractorCrypto:          {"certificate analysis", "apksigner", "signing certificate hygiene checks"},
	models.ExtractorSignature:       {"signature verification", "apksigner", "signature trust verification"},
	models.ExtractorYARA:            {"YARA scanning", "yara-x", "rule-based malware detection"},
}

// Adapter converts raw per-extractor findings into typed metric values.
// Optional extractors degrade into neutral notices; mandatory ones
// (manifest, permissions) fail the job when absent.
type Adapter struct {
	logger *logger.Logger
}

// NewAdapter creates a new Adapter.
func NewAdapter(log *logger.Logger) *Adapter {
	return &Adapter{logger: log.WithComponent("adapter")}
}

// AdaptExtractor converts one extractor's result into metric values.
// present is false when the extractor reported nothing at all. The returned
// notice is non-empty only for the optional-unavailable path.
func (a *Adapter) AdaptExtractor(name string, res models.StaticResult, present bool, avail models.FeatureAvailability) ([]models.MetricValue, string, error) {
	mandatory := false
	for _, m := range models.MandatoryExtractors() {
		if m == name {
			mandatory = true
		}
	}

	if mandatory {
		if !present || res.Unavailable {
			return nil, "", fmt.Errorf("%s: %w", name, ErrMandatoryExtractorMissing)
		}
		return a.adaptPayload(name, res)
	}

	if !avail.Has(name) {
		feat, ok := optionalCapabilities[name]
		if !ok {
			return nil, "", fmt.Errorf("unknown extractor %q", name)
		}
		a.logger.Info().Str("extractor", name).Msg("optional capability missing, degrading")
		notice := fmt.Sprintf("Optional feature unavailable: %s — skipping. Install %s to enable %s.",
			feat.Feature, feat.Dependency, feat.Capability)
		return a.unavailableMetrics(name), notice, nil
	}

	return a.adaptPayload(name, res)
}

// adaptPayload derives metric values from a present extractor payload.
// A present result with a nil payload counts as unavailable data, not an
// error, except for mandatory extractors which were gated above.
func (a *Adapter) adaptPayload(name string, res models.StaticResult) ([]models.MetricValue, string, error) {
	switch name {
	case models.ExtractorManifest:
		if res.Manifest == nil {
			return nil, "", fmt.Errorf("%s: %w", name, ErrMandatoryExtractorMissing)
		}
		return []models.MetricValue{
			metricValue("component_exposure", ratio(res.Manifest.ExportedComponents, res.Manifest.TotalComponents)),
		}, "", nil

	case models.ExtractorPermissions:
		if res.Permissions == nil {
			return nil, "", fmt.Errorf("%s: %w", name, ErrMandatoryExtractorMissing)
		}
		return []models.MetricValue{
			metricValue("permission_density", ratio(res.Permissions.Dangerous, res.Permissions.TotalDeclared)),
		}, "", nil

	case models.ExtractorNetworkSecurity:
		ns := res.NetworkSecurity
		if ns == nil {
			return a.unavailableMetrics(name), "", nil
		}
		return []models.MetricValue{
			metricValue("cleartext_traffic_permitted", boolValue(ns.CleartextPermitted)),
			metricValue("missing_certificate_pinning", boolValue(!ns.CertificatePinning)),
			metricValue("debug_overrides", boolValue(ns.DebugOverrides)),
		}, "", nil

	case models.ExtractorSecrets:
		if res.Secrets == nil {
			return a.unavailableMetrics(name), "", nil
		}
		return []models.MetricValue{
			metricValue("hardcoded_secret_count", float64(len(res.Secrets.Matches))),
		}, "", nil

	case models.ExtractorDependencies:
		if res.Dependencies == nil {
			return a.unavailableMetrics(name), "", nil
		}
		return []models.MetricValue{
			metricValue("vulnerable_dependency_count", float64(res.Dependencies.Vulnerable)),
		}, "", nil

	case models.ExtractorCrypto:
		cert := res.Certificate
		if cert == nil {
			return a.unavailableMetrics(name), "", nil
		}
		return []models.MetricValue{
			metricValue("expired_certificate", boolValue(cert.Expired)),
			metricValue("self_signed_certificate", boolValue(cert.SelfSigned)),
		}, "", nil

	case models.ExtractorSignature:
		if res.Signature == nil {
			return a.unavailableMetrics(name), "", nil
		}
		return []models.MetricValue{
			metricValue("untrusted_signature", boolValue(!res.Signature.Trusted)),
		}, "", nil

	case models.ExtractorYARA:
		if res.YARA == nil {
			return a.unavailableMetrics(name), "", nil
		}
		return []models.MetricValue{
			metricValue("yara_match_count", float64(len(res.YARA.MatchedRules))),
		}, "", nil

	default:
		return nil, "", fmt.Errorf("unknown extractor %q", name)
	}
}

// unavailableMetrics returns the extractor's metrics marked Available=false,
// so downstream stages see an explicit gap rather than a silent zero.
func (a *Adapter) unavailableMetrics(extractor string) []models.MetricValue {
	names := extractorMetrics[extractor]
	out := make([]models.MetricValue, 0, len(names))
	for _, name := range names {
		spec := specIndex[name]
		out = append(out, models.MetricValue{
			Name:      name,
			Kind:      spec.Kind,
			Source:    spec.Source,
			Available: false,
		})
	}
	return out
}

func metricValue(name string, raw float64) models.MetricValue {
	spec := specIndex[name]
	return models.MetricValue{
		Name:      name,
		Raw:       raw,
		Kind:      spec.Kind,
		Source:    spec.Source,
		Available: true,
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func ratio(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}
