package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/IshaanNene/CompareGoat/internal/types"
)

// Method names how the user's input identifies the seed product.
type Method string

const (
	MethodAuto Method = "auto"
	MethodName Method = "name"
	MethodID   Method = "id"
	MethodURL  Method = "url"
)

// ParseMethod validates a method name. The empty string means auto.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MethodAuto, nil
	case MethodAuto, MethodName, MethodID, MethodURL:
		return m, nil
	default:
		return "", fmt.Errorf("unknown lookup method %q (want auto, name, id or url)", s)
	}
}

// DetectMethod returns the method actually used for input. Product links
// and ids pasted as a name are treated as such, and an id pasted as a URL
// is looked up as an id.
func (u *URLs) DetectMethod(input string, requested Method) Method {
	switch requested {
	case MethodAuto, MethodName:
		if u.LooksLikeProductURL(input) {
			return MethodURL
		}
		if LooksLikeID(input) {
			return MethodID
		}
		return MethodName
	case MethodURL:
		if LooksLikeID(input) {
			return MethodID
		}
		return MethodURL
	default:
		return requested
	}
}

// Resolve fetches the seed product for input. An id lookup that fails is
// retried once through the URL built from the id. Terminal failures are
// returned as *types.LookupError carrying the effective method.
func (c *Client) Resolve(ctx context.Context, input string, requested Method) (*types.Product, Method, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, requested, &types.LookupError{Input: input, Method: string(requested), Err: fmt.Errorf("empty input")}
	}

	method := c.urls.DetectMethod(input, requested)
	if method != requested && requested != MethodAuto {
		c.logger.Info("lookup method switched", "requested", requested, "effective", method)
	}

	var (
		product *types.Product
		err     error
	)
	switch method {
	case MethodName:
		product, err = c.FetchByName(ctx, input)
	case MethodID:
		product, err = c.FetchByID(ctx, input)
		if err != nil && ctx.Err() == nil {
			c.logger.Warn("id lookup failed, trying product URL", "id", input, "error", err)
			product, err = c.FetchByURL(ctx, c.urls.ProductURL(input))
		}
	case MethodURL:
		if !c.urls.IsCatalogURL(input) {
			c.logger.Warn("input does not look like a catalog product URL", "url", input)
		}
		product, err = c.FetchByURL(ctx, input)
	default:
		err = fmt.Errorf("unknown lookup method %q", method)
	}

	if err != nil {
		return nil, method, &types.LookupError{Input: input, Method: string(method), Err: err}
	}
	return product, method, nil
}
