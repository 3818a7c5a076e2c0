package facturx

import "strings"

// Profile is a Factur-X conformance level
type Profile string

const (
	ProfileUnknown   Profile = ""
	ProfileMinimum   Profile = "minimum"
	ProfileBasicWL   Profile = "basicwl"
	ProfileBasic     Profile = "basic"
	ProfileEN16931   Profile = "en16931"
	ProfileExtended  Profile = "extended"
	ProfileXRechnung Profile = "xrechnung"
)

// Profiles lists the known profiles from least to most detailed
var Profiles = []Profile{
	ProfileMinimum,
	ProfileBasicWL,
	ProfileBasic,
	ProfileEN16931,
	ProfileExtended,
	ProfileXRechnung,
}

// ProfileFromGuideline maps a GuidelineSpecifiedDocumentContextParameter ID
// to its profile
func ProfileFromGuideline(id string) Profile {
	s := strings.ToLower(strings.TrimSpace(id))
	switch {
	case s == "":
		return ProfileUnknown
	case strings.Contains(s, "xrechnung"):
		return ProfileXRechnung
	case strings.HasSuffix(s, ":minimum"):
		return ProfileMinimum
	case strings.HasSuffix(s, ":basicwl"):
		return ProfileBasicWL
	case strings.HasSuffix(s, ":basic"):
		return ProfileBasic
	case strings.Contains(s, ":extended"):
		return ProfileExtended
	case strings.HasPrefix(s, "urn:cen.eu:en16931:2017"):
		return ProfileEN16931
	}
	return ProfileUnknown
}

// String returns the profile name, or "unknown"
func (p Profile) String() string {
	if p == ProfileUnknown {
		return "unknown"
	}
	return string(p)
}

// ConformanceLevel returns the fx:ConformanceLevel XMP value of the profile,
// or "" when it is unknown
func (p Profile) ConformanceLevel() string {
	switch p {
	case ProfileMinimum:
		return "MINIMUM"
	case ProfileBasicWL:
		return "BASIC WL"
	case ProfileBasic:
		return "BASIC"
	case ProfileEN16931:
		return "EN 16931"
	case ProfileExtended:
		return "EXTENDED"
	case ProfileXRechnung:
		return "XRECHNUNG"
	}
	return ""
}
