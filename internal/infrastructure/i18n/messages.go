package i18n

// entry holds one message in both supported languages
type entry struct {
	lt string
	en string
}

// messages is keyed by error reason, error code or validation tag
var messages = map[string]entry{
	// generic error codes
	"ERR_INTERNAL":       {"Įvyko nenumatyta klaida", "An unexpected error occurred"},
	"ERR_NOT_FOUND":      {"Įrašas nerastas", "Resource not found"},
	"ERR_ALREADY_EXISTS": {"Toks įrašas jau egzistuoja", "Resource already exists"},
	"ERR_CONFLICT":       {"Įrašas naudojamas ir negali būti pakeistas", "Resource is in use"},
	"ERR_INVALID_INPUT":  {"Neteisingi duomenys", "Invalid input provided"},
	"ERR_VALIDATION":     {"Užklausos duomenys neteisingi", "Request validation failed"},
	"ERR_BAD_REQUEST":    {"Neteisinga užklausa", "Bad request"},
	"ERR_INVALID_JSON":   {"Neteisingas JSON formatas", "Malformed JSON body"},
	"ERR_UNAUTHORIZED":   {"Būtina prisijungti", "Authentication required"},
	"ERR_FORBIDDEN":      {"Neturite teisės atlikti šio veiksmo", "You are not allowed to perform this action"},
	"ERR_TOKEN_EXPIRED":  {"Sesija baigėsi, prisijunkite iš naujo", "Session expired, please log in again"},
	"ERR_TOKEN_INVALID":  {"Neteisinga sesija", "Invalid session"},
	"ERR_RATE_LIMITED":   {"Per daug užklausų, bandykite vėliau", "Too many requests, please try again later"},
	"ERR_TOO_LARGE":      {"Užklausa per didelė", "Request body exceeds the allowed size"},
	"ERR_UNAVAILABLE":    {"Paslauga laikinai nepasiekiama", "Service temporarily unavailable"},

	// accounts and authentication
	"user.not_found":            {"Naudotojas nerastas", "User not found"},
	"user.email_taken":          {"Šis el. pašto adresas jau užregistruotas", "Email is already registered"},
	"user.email_invalid":        {"Neteisingas el. pašto adresas", "Invalid email format"},
	"user.phone_invalid":        {"Neteisingas telefono numeris", "Invalid phone number"},
	"user.name_required":        {"Vardas privalomas", "Name is required"},
	"user.password_weak":        {"Slaptažodį turi sudaryti bent 8 simboliai, tarp jų raidė ir skaičius", "Password must be at least 8 characters and contain a letter and a digit"},
	"user.status_invalid":       {"Neteisinga paskyros būsena", "Invalid user status"},
	"auth.invalid_credentials":  {"Neteisingas el. paštas arba slaptažodis", "Invalid email or password"},
	"auth.account_disabled":     {"Paskyra užblokuota", "Account is disabled"},
	"auth.wrong_password":       {"Neteisingas dabartinis slaptažodis", "Current password is incorrect"},
	"auth.unauthenticated":      {"Būtina prisijungti", "Authentication required"},
	"auth.token_expired":        {"Sesija baigėsi, prisijunkite iš naujo", "Session expired, please log in again"},
	"auth.token_invalid":        {"Neteisinga sesija", "Invalid session"},
	"auth.token_revoked":        {"Sesija nutraukta, prisijunkite iš naujo", "Session was revoked, please log in again"},
	"auth.admin_required":       {"Reikalingos administratoriaus teisės", "Administrator access required"},
	"client.is_admin":           {"Administratoriaus paskyros šalinti negalima", "Administrator accounts cannot be deleted here"},
	"client.has_orders":         {"Klientas turi %d užsakymų ir negali būti pašalintas", "Client has %d orders and cannot be deleted"},
	"client.admin_not_editable": {"Administratoriaus paskyros čia keisti negalima", "Administrator accounts cannot be edited here"},

	// valuators
	"valuator.not_found":     {"Vertintojas nerastas", "Valuator not found"},
	"valuator.code_taken":    {"Vertintojo kodas jau naudojamas", "Valuator code is already in use"},
	"valuator.code_invalid":  {"Vertintojo kodą turi sudaryti 2-16 simbolių: A-Z, 0-9, _ arba -", "Valuator code must be 2-16 characters of A-Z, 0-9, _ or -"},
	"valuator.name_required": {"Vertintojo vardas privalomas", "Valuator name is required"},
	"valuator.inactive":      {"Vertintojas %s neaktyvus", "Valuator %s is not active"},
	"valuator.has_orders":    {"Vertintojui priskirta %d užsakymų, jo pašalinti negalima", "Valuator still has %d assigned orders"},

	// orders
	"order.not_found":           {"Užsakymas nerastas", "Order not found"},
	"order.report_missing":      {"Vertinimo ataskaita dar neparengta", "Valuation report is not available yet"},
	"order.status_invalid":      {"Nežinoma užsakymo būsena %q", "Unknown order status %q"},
	"order.transition_invalid":  {"Būsenos iš %s į %s pakeisti negalima", "Cannot change status from %s to %s"},
	"order.service_invalid":     {"Nežinoma paslauga %q", "Unknown service type %q"},
	"order.property_invalid":    {"Nežinomas turto tipas %q", "Unknown property type %q"},
	"order.address_required":    {"Turto adresas privalomas", "Property address is required"},
	"order.price_negative":      {"Kaina negali būti neigiama", "Price cannot be negative"},
	"order.price_invalid":       {"Neteisinga kaina", "Invalid price"},
	"order.closed":              {"Užsakymas yra %s būsenos ir jo keisti nebegalima", "Order is %s and can no longer be changed"},
	"order.report_file_invalid": {"Vertinimo ataskaita turi būti PDF failas", "Valuation report must be a PDF file"},
	"order.report_too_large":    {"Ataskaitos failas per didelis", "Report file is too large"},
	"order.email_required":      {"Kontaktinis el. paštas privalomas", "Contact email is required"},
	"order.number_taken":        {"Užsakymo numeris jau naudojamas, bandykite dar kartą", "Order number is already in use, please retry"},

	// reports
	"report.preset_invalid":      {"Nežinomas laikotarpis %q", "Unknown date range preset %q"},
	"report.date_invalid":        {"%s: neteisingas datos formatas, tikimasi YYYY-MM-DD", "%s: invalid date format, expected YYYY-MM-DD"},
	"report.date_required":       {"%s privaloma pasirinktam laikotarpiui", "%s is required for a custom range"},
	"report.range_reversed":      {"Pradžios data negali būti vėlesnė už pabaigos datą", "Start date must not be after end date"},
	"report.range_too_long":      {"Laikotarpis negali viršyti 10 metų", "Date range must not exceed 10 years"},
	"report.kind_invalid":        {"Nežinoma ataskaita %q", "Unknown report %q"},
	"report.format_invalid":      {"Nežinomas eksporto formatas %q", "Unknown export format %q"},
	"report.granularity_invalid": {"Nežinomas grupavimas %q", "Unknown granularity %q"},
	"report.export_failed":       {"Nepavyko sugeneruoti ataskaitos", "Failed to generate the report"},

	// geocoding and storage
	"geocode.address_required": {"Adresas privalomas", "Address is required"},
	"geocode.not_found":        {"Adresas nerastas", "Address not found"},
	"geocode.unavailable":      {"Adresų paieška laikinai nepasiekiama", "Address lookup is temporarily unavailable"},
	"geocode.disabled":         {"Adresų paieška išjungta", "Address lookup is disabled"},
	"storage.disabled":         {"Failų saugykla nesukonfigūruota", "File storage is not configured"},

	// validation tags
	"validation.required": {"Laukas privalomas", "This field is required"},
	"validation.email":    {"Neteisingas el. pašto formatas", "Invalid email format"},
	"validation.min":      {"Turi būti ne mažiau kaip %s", "Must be at least %s"},
	"validation.max":      {"Turi būti ne daugiau kaip %s", "Must be at most %s"},
	"validation.len":      {"Turi būti tiksliai %s simbolių", "Must be exactly %s characters"},
	"validation.oneof":    {"Leistinos reikšmės: %s", "Must be one of: %s"},
	"validation.uuid":     {"Neteisingas UUID formatas", "Invalid UUID format"},
	"validation.gte":      {"Turi būti didesnis arba lygus %s", "Must be greater than or equal to %s"},
	"validation.lte":      {"Turi būti mažesnis arba lygus %s", "Must be less than or equal to %s"},
	"validation.datetime": {"Neteisingas datos formatas, tikimasi %s", "Invalid date format, expected %s"},
	"validation.default":  {"Neteisinga reikšmė", "Invalid value"},
}
