package activity

import (
	"context"
	"net/url"
)

// ConvertGoldRich sends one redemption request for a prize. The endpoint is
// known to answer with non-JSON bodies on success, so the raw body is
// returned for the caller to interpret. viaPost selects the POST transport
// fallback used when GET cannot get through.
func (c *Client) ConvertGoldRich(ctx context.Context, prizeCode, phone string, viaPost bool) ([]byte, error) {
	params := url.Values{}
	params.Set("prizeCode", prizeCode)
	params.Set("activityCode", c.vendor.ActivityCode)
	params.Set("phone", phone)
	params.Set("isNfcPhone", "false")
	params.Set("channel", "exchange")
	params.Set("deviceType", "2")
	params.Set("system", "1")
	params.Set("visitEnvironment", "2")
	params.Set("userExtra", c.profile.UserExtra)

	const path = "/mp/api/generalActivity/convertGoldRich"
	if viaPost {
		return c.PostFormRaw(ctx, path, params)
	}
	return c.GetRaw(ctx, path, params)
}
