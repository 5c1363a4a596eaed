package reconcile

import "strings"

// Contact fields live at the record's top level in every upstream shape
// observed, so the tables below are per-field candidate keys rather than a
// single section path.
var (
	contactNamePaths     = []Path{"Full Name", "fullName", "full_name", "name"}
	contactEmailPaths    = []Path{"Email", "email", "Email Address", "emailAddress"}
	contactPhonePaths    = []Path{"Phone", "phone", "Phone Number", "phoneNumber"}
	contactLinkedInPaths = []Path{"LinkedIn", "linkedin", "LinkedIn URL", "linkedin_url"}
	contactAddressPaths  = []Path{"Address", "address"}
	contactCityPaths     = []Path{"City", "city", "address.city", "address.City"}
	contactStatePaths    = []Path{"State", "state", "address.state", "address.State"}
	contactZipPaths      = []Path{"Postal Code", "postalCode", "zip", "address.zip", "address.postalCode", "address.Postal Code"}
	contactCountryPaths  = []Path{"Country", "country", "address.country"}
)

// ExtractContactInfo returns the normalized contact section. Every attribute
// is populated, empty string when absent.
func ExtractContactInfo(record map[string]any) ContactInfo {
	info := ContactInfo{}
	if record == nil {
		return info
	}

	info.FullName, _ = ResolveString(record, contactNamePaths)
	info.FirstName, info.LastName = splitFullName(record, info.FullName)
	info.Email, _ = ResolveString(record, contactEmailPaths)
	info.Phone, _ = ResolveString(record, contactPhonePaths)
	info.LinkedIn, _ = ResolveString(record, contactLinkedInPaths)
	info.Address, _ = ResolveString(record, contactAddressPaths)
	info.City, _ = ResolveString(record, contactCityPaths)
	info.State, _ = ResolveString(record, contactStatePaths)
	info.PostalCode, _ = ResolveString(record, contactZipPaths)
	info.Country, _ = ResolveString(record, contactCountryPaths)

	if info.State == "" {
		info.State = stateFromAddress(info.Address)
	}
	return info
}

func splitFullName(record map[string]any, fullName string) (first, last string) {
	first, _ = ResolveString(record, []Path{"firstName", "First Name"})
	last, _ = ResolveString(record, []Path{"lastName", "Last Name"})
	if first != "" || last != "" {
		return first, last
	}
	if fullName == "" {
		return "", ""
	}
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// stateFromAddress pulls a two-letter state code out of the address tail
// ("City, ST 60601") when no explicit state field exists.
func stateFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	for _, word := range strings.Fields(parts[len(parts)-1]) {
		if len(word) == 2 && word == strings.ToUpper(word) && isAlpha(word) {
			return word
		}
	}
	return ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
