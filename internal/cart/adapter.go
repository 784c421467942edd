package cart

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"storefront/catalogsync/internal/domain"
	"storefront/catalogsync/internal/pricing"
	"storefront/catalogsync/internal/reference"
	"storefront/catalogsync/internal/session"
)

// DefaultColor is the color token used for items that come in one color only.
const DefaultColor = "default"

// Remote is the cart collaborator.
type Remote interface {
	AddCartItem(ctx context.Context, item domain.LineItem) error
}

// Outcome is what the caller does after an add: confirm, send the user to
// sign-in, or show the failure message.
type Outcome int

const (
	OutcomeAdded Outcome = iota
	OutcomeAuthRequired
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeAuthRequired:
		return "auth_required"
	default:
		return "failed"
	}
}

// Classify maps the error returned by AddToCart to an outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeAdded
	case domain.IsAuthenticationRequired(err):
		return OutcomeAuthRequired
	default:
		return OutcomeFailed
	}
}

// Receipt describes a line item the cart accepted.
type Receipt struct {
	Item    domain.LineItem
	Outcome Outcome
}

// Adapter resolves a product variant to a complete line item and hands it to
// the cart collaborator.
type Adapter struct {
	remote       Remote
	session      session.Session
	colors       *reference.ColorTable
	defaultColor string
	validate     *validator.Validate
}

func NewAdapter(remote Remote, sess session.Session, colors *reference.ColorTable, ids *domain.IDShape, defaultColor string) *Adapter {
	if ids == nil {
		ids = domain.MustIDShape(domain.DefaultIDPattern)
	}
	if defaultColor == "" {
		defaultColor = DefaultColor
	}
	return &Adapter{
		remote:       remote,
		session:      sess,
		colors:       colors,
		defaultColor: defaultColor,
		validate:     domain.NewValidator(ids),
	}
}

// AddToCart adds one unit of item in the given size and color. Selections are
// checked before anything is sent; a missing session fails with
// AuthenticationRequired without calling the cart.
func (a *Adapter) AddToCart(ctx context.Context, item domain.CatalogItem, size, color string) (*Receipt, error) {
	line, err := a.LineItem(item, size, color)
	if err != nil {
		return nil, err
	}

	if !session.Authenticated(a.session) {
		return &Receipt{Item: line, Outcome: OutcomeAuthRequired},
			domain.NewError(domain.CodeAuthenticationRequired, "Please sign in to add items to your cart.")
	}

	if err := a.remote.AddCartItem(ctx, line); err != nil {
		log.Warnf("⚠️ Failed to add %s to cart: %v", line.Key, err)
		return &Receipt{Item: line, Outcome: Classify(err)}, err
	}

	log.Infof("🛒 Added %s to cart at %s", line.Key, line.UnitPrice.StringFixed(pricing.PricePrecision))
	return &Receipt{Item: line, Outcome: OutcomeAdded}, nil
}

// LineItem resolves the selections for item into a validated line item.
func (a *Adapter) LineItem(item domain.CatalogItem, size, color string) (domain.LineItem, error) {
	size = strings.TrimSpace(size)
	if size == "" {
		return domain.LineItem{}, domain.Validation("Please select a size.")
	}

	resolved, err := a.resolveColor(item, color)
	if err != nil {
		return domain.LineItem{}, err
	}

	line := domain.LineItem{
		Key:       domain.LineItemKey(item.ID, size, resolved),
		ProductID: item.ID,
		Name:      item.Name,
		Size:      size,
		Color:     resolved,
		Quantity:  1,
		UnitPrice: pricing.EffectivePrice(item),
		Image:     item.Image,
	}

	if err := a.validate.Struct(line); err != nil {
		return domain.LineItem{}, &domain.Error{
			Code:    domain.CodeValidation,
			Message: "This product cannot be added to the cart.",
			Err:     fmt.Errorf("invalid line item %s: %w", line.Key, err),
		}
	}
	return line, nil
}

func (a *Adapter) resolveColor(item domain.CatalogItem, color string) (string, error) {
	if !item.HasColors() {
		return a.defaultColor, nil
	}

	color = strings.TrimSpace(color)
	if color == "" {
		return "", domain.Validation("Please select a color.")
	}

	canonical := a.colors.Canonical(color)
	idx := slices.IndexFunc(item.Colors, func(c string) bool {
		return strings.EqualFold(a.colors.Canonical(c), canonical)
	})
	if idx < 0 {
		return "", domain.Validation(fmt.Sprintf("%s is not available in %s.", item.Name, color))
	}
	return item.Colors[idx], nil
}
