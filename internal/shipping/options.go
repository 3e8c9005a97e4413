package shipping

import "context"

// OptionsFor resolves the rate options for a courier. The COD and
// international tariffs are served from the static lists; everything else is
// quoted against the remote client.
func OptionsFor(ctx context.Context, client Client, req RateReq) ([]Rate, error) {
	switch req.Courier {
	case CourierCOD:
		return CODRates(), nil
	case CourierInternational:
		return InternationalRates(), nil
	default:
		return client.Rates(ctx, req)
	}
}
