package scraper

const ebayResultsPage = `<!DOCTYPE html>
<html>
<head><title>Logitech K400 for sale | eBay</title></head>
<body>
<ul class="srp-results">
	<li class="s-item s-item__pl-on-bottom">
		<span role="heading">Shop on eBay</span>
		<span class="s-item__price">$20.00</span>
		<a class="s-item__link" href="/itm/placeholder">link</a>
	</li>
	<li class="s-item s-item__pl-on-bottom">
		<a class="s-item__link" href="/itm/1"><span role="heading">Logitech K400</span></a>
		<span class="s-item__price">$29.99</span>
	</li>
	<li class="s-item s-item__pl-on-bottom">
		<a class="s-item__link" href="/itm/2"><span role="heading">Logitech K400 Plus</span></a>
		<span class="s-item__price">$30.00 to $34.99</span>
	</li>
	<li class="s-item s-item__pl-on-bottom">
		<a class="s-item__link" href="/itm/3"></a>
		<span class="s-item__price">$5.00</span>
	</li>
	<li class="s-item s-item__pl-on-bottom">
		<a class="s-item__link" href="/itm/4"><span role="heading">Logitech K400 Keyboard</span></a>
		<span class="s-item__price">Contact seller</span>
	</li>
</ul>
</body>
</html>`

func ebayDetailPage(ratings []string, info []string) string {
	page := `<html><head><title>item | eBay</title></head><body>`
	for _, r := range ratings {
		page += `<div class="fdbk-detail-seller-rating"><span class="fdbk-detail-seller-rating__label">Accurate description</span><span class="fdbk-detail-seller-rating__value">` + r + `</span></div>`
	}
	page += `<div class="d-stores-info-categories__container__info__section">`
	for _, i := range info {
		page += `<div class="d-stores-info-categories__container__info__section__item"><span class="ux-textspans ux-textspans--BOLD">` + i + `</span><span class="ux-textspans">label</span></div>`
	}
	page += `</div></body></html>`
	return page
}

const amazonResultsPage = `<html><body>
<div data-component-type="s-search-result" data-asin="B001">
	<h2><a href="/dp/B001"><span class="a-size-base-plus a-color-base a-text-normal">Logitech K400 Plus Wireless</span></a></h2>
	<span class="a-price"><span class="a-price-whole">1,029<span class="a-price-decimal">.</span></span><span class="a-price-fraction">99</span></span>
</div>
<div data-component-type="s-search-result" data-asin="B002">
	<h2><a href="https://www.amazon.com/dp/B002"><span>Logitech K400 Refurbished</span></a></h2>
</div>
</body></html>`
