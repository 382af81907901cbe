package domain

import mrand "math/rand"

// The word bank ships with the binary. Spanish on purpose, same as the
// original game.
var wordCategories = map[string][]string{
	"Lugares":     {"Playa", "Hospital", "Escuela", "Submarino", "Estación Espacial", "Cine", "Cementerio", "Circo", "Prisión", "Biblioteca"},
	"Comida":      {"Pizza", "Sushi", "Hamburguesa", "Tacos", "Helado", "Paella", "Chocolate", "Ensalada", "Ceviche", "Palomitas"},
	"Profesiones": {"Doctor", "Payaso", "Astronauta", "Bombero", "Profesor", "Futbolista", "Detective", "Cocinero", "Mago", "Mecánico"},
	"Animales":    {"Elefante", "Pingüino", "León", "Jirafa", "Tiburón", "Águila", "Canguro", "Panda", "Murciélago", "Camaleón"},
	"Objetos":     {"Espejo", "Teléfono", "Paraguas", "Reloj", "Llaves", "Zapatos", "Mochila", "Guitarra", "Cuchillo", "Lámpara"},
}

var categoryNames = func() []string {
	names := make([]string, 0, len(wordCategories))
	for name := range wordCategories {
		names = append(names, name)
	}
	return names
}()

// RandomWord picks a category uniformly at random, then a word uniformly
// from that category's list.
func RandomWord() (category, word string) {
	category = categoryNames[mrand.Intn(len(categoryNames))]
	words := wordCategories[category]
	word = words[mrand.Intn(len(words))]
	return category, word
}

// WordsInCategory returns the fixed word list for a category, or nil when
// the category is unknown.
func WordsInCategory(category string) []string {
	return wordCategories[category]
}

func Categories() []string {
	out := make([]string, len(categoryNames))
	copy(out, categoryNames)
	return out
}
