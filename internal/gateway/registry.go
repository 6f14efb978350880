package gateway

import (
	"sort"
	"strings"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
)

// Registry хранит зарегистрированные адаптеры платёжных шлюзов
// и разрешает их по строковому ключу без учёта регистра.
// Это единственная точка валидации выбора шлюза.
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry создает реестр из переданных адаптеров.
func NewRegistry(gateways ...Gateway) *Registry {
	m := make(map[string]Gateway, len(gateways))
	for _, g := range gateways {
		m[strings.ToLower(g.Name())] = g
	}
	return &Registry{gateways: m}
}

// Resolve возвращает адаптер по имени. Для неизвестного имени возвращает
// ValidationError со списком всех зарегистрированных шлюзов.
func (r *Registry) Resolve(name string) (Gateway, error) {
	g, ok := r.gateways[strings.ToLower(name)]
	if !ok {
		return nil, apperr.NewValidation(
			"unknown payment gateway %q, registered gateways: %s",
			name, strings.Join(r.Names(), ", "))
	}
	return g, nil
}

// Names возвращает отсортированный список зарегистрированных шлюзов.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
