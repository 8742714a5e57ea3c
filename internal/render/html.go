package render

import (
	"html/template"
	"io"
	"strings"
)

var listTemplate = template.Must(template.New("products").Funcs(template.FuncMap{
	"join": func(images []string) string { return strings.Join(images, " ") },
}).Parse(`{{range .}}<li data-id="{{.ID}}" class="hover:shadow-md hover:shadow-gray-400 bg-white rounded-lg cursor-pointer">
  <div class="w-full h-40 js-gallery"{{if .Images}} data-images="{{join .Images}}"{{end}}>
    <img class="w-full h-full object-contain" src="{{.Thumbnail}}" alt="Product Image">
  </div>
  <div class="p-4 space-y-2">
    <h2 class="line-clamp-2 font-medium text-lg">{{.Title}}</h2>
    <div class="flex py-1 justify-center items-center rounded-sm space-x-1 bg-green-700 text-white w-14"><span class="text-sm">{{.Rating}}</span></div>
    <div class="flex space-x-2 items-center"><span class="font-semibold text-xl">&#8377;{{.DiscountedPrice}}</span>
      <span class="text-gray-500 line-through">&#8377;{{.Price}}</span>
      <div class="text-green-700 font-medium text-sm"><span>{{.Discount}}%</span> <span>off</span></div>
    </div>
    <button type="button" class="js-addToCartBtn hover:bg-indigo-700 bg-blue-600 text-white w-full py-2 rounded-md" aria-label="Add To Cart">{{.ActionLabel}}</button>
  </div>
</li>
{{end}}`))

var paginationTemplate = template.Must(template.New("pages").Parse(`{{range .}}<button class="bg-blue-100 px-2 rounded-md text-blue-800" aria-label="Pagination Buttons" value="{{.Value}}">{{.Label}}</button>{{end}}`))

// WriteHTML writes the product list markup for cards.
func WriteHTML(w io.Writer, cards []Card) error {
	return listTemplate.Execute(w, cards)
}

// WritePaginationHTML writes the pagination buttons.
func WritePaginationHTML(w io.Writer, buttons []PageButton) error {
	return paginationTemplate.Execute(w, buttons)
}
