package shipping

// Courier codes owned by this core. Domestic couriers are quoted dynamically;
// the COD and international lists below are fixed tariffs, not fetched.
const (
	CourierCOD           = "cod"
	CourierInternational = "international"
)

// CODRates returns the static cash-on-delivery tariff list.
func CODRates() []Rate {
	return []Rate{
		{Courier: CourierCOD, Service: "AREA-1", Cost: 10000, ETD: "1-2"},
		{Courier: CourierCOD, Service: "AREA-2", Cost: 20000, ETD: "2-4"},
	}
}

// InternationalRates returns the static international tariff list.
func InternationalRates() []Rate {
	return []Rate{
		{Courier: CourierInternational, Service: "ASIA", Cost: 250000, ETD: "7-14"},
		{Courier: CourierInternational, Service: "WORLDWIDE", Cost: 450000, ETD: "14-30"},
	}
}

// IsInternational reports whether the courier code is the international tariff.
func IsInternational(courier string) bool {
	return courier == CourierInternational
}
