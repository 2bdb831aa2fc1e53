package models

// Extractor names used as keys in the per-job static results mapping.
const (
	ExtractorManifest        = "manifest"
	ExtractorPermissions     = "permissions"
	ExtractorNetworkSecurity = "network_security"
	ExtractorSecrets         = "secrets"
	ExtractorDependencies    = "dependencies"
	ExtractorCrypto          = "crypto"
	ExtractorSignature       = "signature"
	ExtractorYARA            = "yara"
)

// AllExtractors lists every extractor in processing order.
func AllExtractors() []string {
	return []string{
		ExtractorManifest,
		ExtractorPermissions,
		ExtractorNetworkSecurity,
		ExtractorSecrets,
		ExtractorDependencies,
		ExtractorCrypto,
		ExtractorSignature,
		ExtractorYARA,
	}
}

// MandatoryExtractors lists the extractors whose absence fails the job.
// Baseline structural data comes from the manifest and permission set;
// without them no meaningful assessment exists.
func MandatoryExtractors() []string {
	return []string{ExtractorManifest, ExtractorPermissions}
}

// StaticResult is one extractor's report: either a typed payload or an
// explicit unavailability marker. Exactly one payload field is set when
// Unavailable is false.
type StaticResult struct {
	Unavailable bool `json:"unavailable,omitempty"`

	Manifest        *ManifestInfo        `json:"manifest,omitempty"`
	Permissions     *PermissionsInfo     `json:"permissions,omitempty"`
	NetworkSecurity *NetworkSecurityInfo `json:"network_security,omitempty"`
	Secrets         *SecretsInfo         `json:"secrets,omitempty"`
	Dependencies    *DependenciesInfo    `json:"dependencies,omitempty"`
	Certificate     *CertificateInfo     `json:"certificate,omitempty"`
	Signature       *SignatureInfo       `json:"signature,omitempty"`
	YARA            *YARAInfo            `json:"yara,omitempty"`
}

// ManifestInfo summarizes AndroidManifest.xml structure.
type ManifestInfo struct {
	PackageName        string `json:"package_name"`
	TotalComponents    int    `json:"total_components"`
	ExportedComponents int    `json:"exported_components"`
	MinSDK             int    `json:"min_sdk,omitempty"`
	TargetSDK          int    `json:"target_sdk,omitempty"`
	Debuggable         bool   `json:"debuggable,omitempty"`
	BackupAllowed      bool   `json:"backup_allowed,omitempty"`
}

// PermissionsInfo summarizes declared permissions.
type PermissionsInfo struct {
	TotalDeclared int `json:"total_declared"`
	Dangerous     int `json:"dangerous"`
}

// NetworkSecurityInfo reflects the parsed network security config.
type NetworkSecurityInfo struct {
	CleartextPermitted bool `json:"cleartext_permitted"`
	CertificatePinning bool `json:"certificate_pinning"`
	DebugOverrides     bool `json:"debug_overrides"`
}

// SecretsInfo lists hardcoded secrets found in decompiled sources.
type SecretsInfo struct {
	Matches []string `json:"matches"`
}

// DependenciesInfo summarizes the bundled dependency audit.
type DependenciesInfo struct {
	Total      int `json:"total"`
	Vulnerable int `json:"vulnerable"`
}

// CertificateInfo reflects signing certificate hygiene.
type CertificateInfo struct {
	Expired    bool   `json:"expired"`
	SelfSigned bool   `json:"self_signed"`
	Subject    string `json:"subject,omitempty"`
}

// SignatureInfo reflects APK signature verification.
type SignatureInfo struct {
	Trusted  bool   `json:"trusted"`
	SignerCN string `json:"signer_cn,omitempty"`
}

// YARAInfo lists rule matches from the YARA scan.
type YARAInfo struct {
	MatchedRules []string `json:"matched_rules"`
}

// FeatureAvailability records which optional extraction capabilities were
// present for a job. It is resolved once when the pipeline starts and
// threaded through the stages instead of probing ad hoc.
type FeatureAvailability struct {
	NetworkSecurity bool `json:"network_security"`
	Secrets         bool `json:"secrets"`
	Dependencies    bool `json:"dependencies"`
	Crypto          bool `json:"crypto"`
	Signature       bool `json:"signature"`
	YARA            bool `json:"yara"`
}

// ResolveFeatureAvailability derives availability from the static results:
// an optional capability is present when its extractor reported a result
// without the unavailability marker. Mandatory extractors are not tracked
// here; their absence is a hard failure handled by the orchestrator.
func ResolveFeatureAvailability(results map[string]StaticResult) FeatureAvailability {
	present := func(name string) bool {
		res, ok := results[name]
		return ok && !res.Unavailable
	}
	return FeatureAvailability{
		NetworkSecurity: present(ExtractorNetworkSecurity),
		Secrets:         present(ExtractorSecrets),
		Dependencies:    present(ExtractorDependencies),
		Crypto:          present(ExtractorCrypto),
		Signature:       present(ExtractorSignature),
		YARA:            present(ExtractorYARA),
	}
}

// Has reports whether the named optional extractor's capability is present.
func (f FeatureAvailability) Has(extractor string) bool {
	switch extractor {
	case ExtractorNetworkSecurity:
		return f.NetworkSecurity
	case ExtractorSecrets:
		return f.Secrets
	case ExtractorDependencies:
		return f.Dependencies
	case ExtractorCrypto:
		return f.Crypto
	case ExtractorSignature:
		return f.Signature
	case ExtractorYARA:
		return f.YARA
	default:
		return false
	}
}
