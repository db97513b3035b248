package parser

import (
	"errors"
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"testing"

	"github.com/IshaanNene/CompareGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const productHTML = `<!DOCTYPE html>
<html>
<head><title>Sony WH-1000XM5</title></head>
<body>
    <span id="productTitle">
        Sony WH-1000XM5   Wireless Noise Cancelling
        Headphones
    </span>
    <a id="bylineInfo" href="/stores/sony">Visit the Sony Store</a>
    <div class="a-section">
        <span class="a-price"><span class="a-offscreen">₹29,990.00</span><span aria-hidden="true">₹29,990</span></span>
    </div>
    <i class="a-icon a-icon-star"><span class="a-icon-alt">4,6 out of 5 stars</span></i>
    <span id="acrCustomerReviewText">12,345 ratings</span>
    <div id="feature-bullets">
        <ul>
            <li><span class="a-list-item"> Industry leading noise cancellation </span></li>
            <li><span class="a-list-item">30 hour battery</span></li>
            <li><span class="a-list-item">   </span></li>
            <li><span class="a-list-item">Multipoint</span></li>
            <li><span class="a-list-item">Speak-to-chat</span></li>
            <li><span class="a-list-item">Lightweight</span></li>
            <li><span class="a-list-item">Foldable</span></li>
        </ul>
    </div>
    <ul id="variation_color_name">
        <li><img alt="Black"></li>
        <li><img alt="Silver"></li>
        <li><img alt="Black"></li>
        <li><img alt="Midnight Blue"></li>
    </ul>
    <div class="carousel">
        <li data-asin="B0AAAAAAA1"></li>
        <li data-asin="B0SEEDSEED"></li>
        <div data-asin="B0AAAAAAA2"></div>
        <li data-asin="B0AAAAAAA1"></li>
        <li data-asin=""></li>
        <div data-asin="B0AAAAAAA3"></div>
    </div>
</body>
</html>`

func makeResp(rawURL, body string) *types.Response {
	req, _ := types.NewRequest(rawURL)
	return &types.Response{
		Request:    req,
		StatusCode: 200,
		Body:       []byte(body),
	}
}

func TestParseProduct(t *testing.T) {
	p := New(testLogger)
	prod, err := p.ParseProduct(makeResp("https://www.amazon.in/dp/B0SEEDSEED", productHTML), "B0SEEDSEED")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if prod.ID != "B0SEEDSEED" {
		t.Errorf("ID = %q", prod.ID)
	}
	if prod.Title != "Sony WH-1000XM5 Wireless Noise Cancelling Headphones" {
		t.Errorf("Title = %q", prod.Title)
	}
	if prod.Brand != "Sony" {
		t.Errorf("Brand = %q", prod.Brand)
	}
	if prod.PriceRaw != "₹29,990.00" {
		t.Errorf("PriceRaw = %q", prod.PriceRaw)
	}
	if prod.Price == nil || *prod.Price != 29990 {
		t.Errorf("Price = %v, want 29990", prod.Price)
	}
	if prod.Rating == nil || *prod.Rating != 4.6 {
		t.Errorf("Rating = %v, want 4.6", prod.Rating)
	}
	if prod.Reviews == nil || *prod.Reviews != 12345 {
		t.Errorf("Reviews = %v, want 12345", prod.Reviews)
	}

	wantFeatures := []string{
		"Industry leading noise cancellation",
		"30 hour battery",
		"Multipoint",
		"Speak-to-chat",
		"Lightweight",
	}
	if !reflect.DeepEqual(prod.Features, wantFeatures) {
		t.Errorf("Features = %v", prod.Features)
	}
	wantVariants := []string{"Black", "Silver", "Midnight Blue"}
	if !reflect.DeepEqual(prod.Variants, wantVariants) {
		t.Errorf("Variants = %v", prod.Variants)
	}
}

func TestParseProductSpecTableBrandAndLegacyPrice(t *testing.T) {
	html := `<html><body>
		<span id="productTitle">Kitchen Blender 500W</span>
		<span id="priceblock_dealprice">₹1,499</span>
		<table id="productDetails_techSpec_section_1">
			<tr><th>Colour</th><td>Red</td></tr>
			<tr><th> Brand </th><td> Philips </td></tr>
		</table>
	</body></html>`

	prod, err := New(testLogger).ParseProduct(makeResp("https://www.amazon.in/dp/B0BLENDER1", html), "B0BLENDER1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if prod.Brand != "Philips" {
		t.Errorf("Brand = %q, want Philips", prod.Brand)
	}
	if prod.Price == nil || *prod.Price != 1499 {
		t.Errorf("Price = %v, want 1499", prod.Price)
	}
	if prod.Rating != nil || prod.Reviews != nil {
		t.Errorf("expected absent rating/reviews, got %v/%v", prod.Rating, prod.Reviews)
	}
	if len(prod.Features) != 0 || prod.Features == nil {
		t.Errorf("Features = %#v, want empty", prod.Features)
	}
}

func TestParseProductJSONLDFallback(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">
	{"@context":"https://schema.org","@type":"Product","name":"Acme Kettle",
	 "brand":{"@type":"Brand","name":"Acme"},
	 "offers":{"@type":"Offer","price":"2499.00","priceCurrency":"INR"},
	 "aggregateRating":{"@type":"AggregateRating","ratingValue":"4.2","reviewCount":"812"}}
	</script></head><body></body></html>`

	prod, err := New(testLogger).ParseProduct(makeResp("https://www.amazon.in/dp/B0KETTLE01", html), "B0KETTLE01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if prod.Title != "Acme Kettle" || prod.Brand != "Acme" {
		t.Errorf("title/brand = %q/%q", prod.Title, prod.Brand)
	}
	if prod.Price == nil || *prod.Price != 2499 {
		t.Errorf("Price = %v, want 2499", prod.Price)
	}
	if prod.Rating == nil || *prod.Rating != 4.2 {
		t.Errorf("Rating = %v", prod.Rating)
	}
	if prod.Reviews == nil || *prod.Reviews != 812 {
		t.Errorf("Reviews = %v", prod.Reviews)
	}
}

func TestParseProductNoUsableFields(t *testing.T) {
	html := `<html><body><form action="/errors/validateCaptcha"><p>Type the characters you see</p></form></body></html>`

	_, err := New(testLogger).ParseProduct(makeResp("https://www.amazon.in/dp/B0BLOCKED1", html), "B0BLOCKED1")
	var pe *types.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !errors.Is(err, types.ErrNoUsableFields) {
		t.Errorf("expected ErrNoUsableFields, got %v", err)
	}
}

func TestParseProductOutOfRangeRating(t *testing.T) {
	html := `<html><body>
		<span id="productTitle">Odd Listing</span>
		<span class="a-icon-alt">7.5 out of 5 stars</span>
	</body></html>`

	prod, err := New(testLogger).ParseProduct(makeResp("https://www.amazon.in/dp/B0ODD00001", html), "B0ODD00001")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if prod.Rating != nil {
		t.Errorf("Rating = %v, want absent", *prod.Rating)
	}
}

func TestParsePriceToInt(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"₹50,990.00", types.Int(50990)},
		{"₹29,990", types.Int(29990)},
		{"1.299", types.Int(1299)},
		{"₹ 799.5", types.Int(799)},
		{"", nil},
		{"Currently unavailable", nil},
	}
	for _, tt := range tests {
		got := ParsePriceToInt(tt.in)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("ParsePriceToInt(%q) = %v, want %v", tt.in, deref(got), deref(tt.want))
		}
	}
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestCleanByline(t *testing.T) {
	tests := map[string]string{
		"Visit the Sony Store": "Sony",
		"Brand: Philips":       "Philips",
		"  boAt  ":             "boAt",
	}
	for in, want := range tests {
		if got := cleanByline(in); got != want {
			t.Errorf("cleanByline(%q) = %q, want %q", in, got, want)
		}
	}
}

const searchHTML = `<html><body>
<div data-component-type="s-search-result">
    <a class="a-link-normal s-no-outline" href="/Sony-WH-1000XM4/dp/B0XM400001/ref=sr_1_1?keywords=sony">img</a>
</div>
<div data-component-type="s-search-result">
    <h2><a class="a-link-normal a-text-normal" href="https://www.amazon.in/dp/B0XM300001?th=1">Sony XM3</a></h2>
</div>
<div data-component-type="s-search-result">
    <a class="a-link-normal s-no-outline" href="/gp/slredirect/picassoRedirect.html">sponsored</a>
</div>
<div data-component-type="s-search-result">
    <a class="a-link-normal s-no-outline" href="https://evil.example.com/dp/B0EVIL0001">offsite</a>
</div>
<div data-component-type="s-search-result">
    <a class="a-link-normal s-no-outline" href="/Sony-WH-1000XM4/dp/B0XM400001/ref=sr_1_1?keywords=other">dup</a>
</div>
<div data-component-type="s-search-result">
    <a class="a-link-normal s-no-outline" href="/dp/B0JBL00001">jbl</a>
</div>
<div class="not-a-result"><a class="a-link-normal s-no-outline" href="/dp/B0NOTCARD1">x</a></div>
</body></html>`

func TestParseSearchResults(t *testing.T) {
	base, _ := url.Parse("https://www.amazon.in")
	p := New(testLogger)

	urls, err := p.ParseSearchResults(makeResp("https://www.amazon.in/s?k=sony", searchHTML), base, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{
		"https://www.amazon.in/Sony-WH-1000XM4/dp/B0XM400001/ref=sr_1_1",
		"https://www.amazon.in/dp/B0XM300001",
		"https://www.amazon.in/dp/B0JBL00001",
	}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("urls = %v\nwant %v", urls, want)
	}

	capped, _ := p.ParseSearchResults(makeResp("https://www.amazon.in/s?k=sony", searchHTML), base, 2)
	if len(capped) != 2 {
		t.Errorf("capped len = %d, want 2", len(capped))
	}
}

func TestParseRelatedIDs(t *testing.T) {
	p := New(testLogger)
	resp := makeResp("https://www.amazon.in/dp/B0SEEDSEED", productHTML)

	ids, err := p.ParseRelatedIDs(resp, "B0SEEDSEED", 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"B0AAAAAAA1", "B0AAAAAAA2", "B0AAAAAAA3"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}

	capped, _ := p.ParseRelatedIDs(resp, "B0SEEDSEED", 1)
	if !reflect.DeepEqual(capped, []string{"B0AAAAAAA1"}) {
		t.Errorf("capped = %v", capped)
	}
}
