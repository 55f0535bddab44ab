package features

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pastelaria-service/internal/imagestore"
	"pastelaria-service/internal/imagestore/memory"
	"pastelaria-service/internal/model"
	"pastelaria-service/internal/repository"
	"pastelaria-service/pkg/config"
	"pastelaria-service/pkg/database"
)

const pngPayload = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAABAAAAAQCAYAAAAf8/9hAAAABHNCSVQICAgIfAhkiAAAAAlwSFlzAAAAXQAAAF0BVWAulAAAABl0RVh0U29mdHdhcmUAd3d3Lmlua3NjYXBlLm9yZ5vuPBoAAADfSURBVDiNpdK9LkRBFADg76yfRJRKiSi9ghfwHBoR/RYiiEJBNGoakY3oPIBOo1QrJBokCoUXOJoh17XrzjLJFDNzvjlnciYy039Gb1wQEb2IOIyIl4jYlJnVsyQ8Q5b5NC4+b+DETi2ewKCFjzJTLb5o4YOv8w48icsW3v8W03HBcQvv/YgZAaewjkU8FLw9NHYInsFVQSdYwMbIKhtwCTcl43Oj7JVfn9no8T1Wy3oOr+h3dqmAXZw2qpnFG6Yr2qyPd8yXjWVcY1D1yQpawy0ecYetmuyZKT7L+Ov4AOVwwJdv6ZjEAAAAAElFTkSuQmCC"

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

type lifecycleTestContext struct {
	dir      string
	db       *gorm.DB
	backend  *memory.Backend
	images   *imagestore.Store
	types    *repository.ProductTypeRepository
	products *repository.ProductRepository

	typeIDs map[string]uint
	created *model.Product
	current *model.Product
	err     error
}

func (c *lifecycleTestContext) reset() error {
	c.close()

	dir, err := os.MkdirTemp("", "lifecycle-*")
	if err != nil {
		return err
	}
	db, err := database.Open(&config.DBConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(dir, "lifecycle.db"),
		LogLevel:   "silent",
	})
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	c.dir = dir
	c.db = db
	c.backend = memory.New()
	c.images = imagestore.New(c.backend)

	session := repository.NewSession(db)
	c.types = repository.NewProductTypeRepository(session)
	c.products = repository.NewProductRepository(session, c.images, repository.OrphanKeep)

	c.typeIDs = map[string]uint{}
	c.created = nil
	c.current = nil
	c.err = nil
	return nil
}

func (c *lifecycleTestContext) close() {
	if c.db != nil {
		_ = database.Close(c.db)
		c.db = nil
	}
	if c.dir != "" {
		_ = os.RemoveAll(c.dir)
		c.dir = ""
	}
}

func (c *lifecycleTestContext) anEmptyCatalogue() error {
	return c.reset()
}

func (c *lifecycleTestContext) aProductTypeNamed(name string) error {
	pt, err := c.types.Create(context.Background(), model.ProductTypeFields{Name: &name})
	if err != nil {
		return err
	}
	c.typeIDs[name] = pt.ID
	return nil
}

func (c *lifecycleTestContext) theProductTypeIsDestroyed(name string) error {
	id, ok := c.typeIDs[name]
	if !ok {
		return fmt.Errorf("unknown product type %q", name)
	}
	return c.types.Destroy(context.Background(), id)
}

func (c *lifecycleTestContext) createProduct(name, price string, typeID uint, photo string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}

	fields := model.ProductFields{Name: &name, Price: &p, ProductTypeID: &typeID}
	if photo != "" {
		fields.Photo = &photo
	}

	c.current, c.err = c.products.Create(context.Background(), fields)
	if c.err != nil {
		return nil
	}

	// keep the stored form so later comparisons see what the database holds
	c.created, c.err = c.products.Find(context.Background(), c.current.ID)
	return nil
}

func (c *lifecycleTestContext) iCreateAProductOfTypeWithAPNGPhoto(name, price, typeName string) error {
	return c.createProduct(name, price, c.typeIDs[typeName], pngPayload)
}

func (c *lifecycleTestContext) iCreateAProductOfTypeWithPhoto(name, price, typeName, photo string) error {
	return c.createProduct(name, price, c.typeIDs[typeName], photo)
}

func (c *lifecycleTestContext) iCreateAProductOfTypeID(name, price string, typeID int) error {
	return c.createProduct(name, price, uint(typeID), "")
}

func (c *lifecycleTestContext) iDestroyTheProduct() error {
	if c.created == nil {
		return errors.New("no product was created")
	}
	c.err = c.products.Destroy(context.Background(), c.created.ID)
	return nil
}

func (c *lifecycleTestContext) iRestoreTheProduct() error {
	if c.created == nil {
		return errors.New("no product was created")
	}
	c.current, c.err = c.products.Restore(context.Background(), c.created.ID)
	return nil
}

func (c *lifecycleTestContext) iRestoreProductType(id int) error {
	_, c.err = c.types.Restore(context.Background(), uint(id))
	return nil
}

func (c *lifecycleTestContext) iRestoreTheProductTypeNamed(name string) error {
	_, c.err = c.types.Restore(context.Background(), c.typeIDs[name])
	return nil
}

func (c *lifecycleTestContext) theOperationSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success but got error: %v", c.err)
	}
	return nil
}

func (c *lifecycleTestContext) theOperationFailsWithNotFound() error {
	if !errors.Is(c.err, repository.ErrNotFound) {
		return fmt.Errorf("expected not found, got %v", c.err)
	}
	return nil
}

func (c *lifecycleTestContext) theOperationFailsWithInvalidBinaryContent() error {
	if !errors.Is(c.err, imagestore.ErrInvalidBinaryContent) {
		return fmt.Errorf("expected invalid binary content, got %v", c.err)
	}
	return nil
}

func (c *lifecycleTestContext) theProductPriceIs(price string) error {
	want, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	if !c.created.Price.Equal(want) {
		return fmt.Errorf("expected price %s, got %s", want, c.created.Price)
	}
	return nil
}

func (c *lifecycleTestContext) theProductPhotoResolvesToAStoredPNGImage() error {
	rc, contentType, err := c.images.Open(context.Background(), imagestore.Reference(c.created.Photo))
	if err != nil {
		return fmt.Errorf("photo %q does not resolve: %w", c.created.Photo, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	if contentType != "image/png" || !bytes.HasPrefix(data, pngMagic) {
		return fmt.Errorf("photo %q is not a PNG image (%s)", c.created.Photo, contentType)
	}
	return nil
}

func (c *lifecycleTestContext) listNames() ([]string, error) {
	items, err := c.products.List(context.Background())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, p := range items {
		names = append(names, p.Name)
	}
	return names, nil
}

func (c *lifecycleTestContext) theProductListIncludes(name string) error {
	names, err := c.listNames()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("expected %q in %v", name, names)
}

func (c *lifecycleTestContext) theProductListDoesNotInclude(name string) error {
	names, err := c.listNames()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return fmt.Errorf("did not expect %q in %v", name, names)
		}
	}
	return nil
}

func (c *lifecycleTestContext) theRestoredProductEqualsTheCreatedProduct() error {
	got, want := c.current, c.created
	switch {
	case got == nil:
		return errors.New("no product was restored")
	case got.ID != want.ID,
		got.Name != want.Name,
		!got.Price.Equal(want.Price),
		got.Photo != want.Photo,
		got.ProductTypeID != want.ProductTypeID:
		return fmt.Errorf("restored product %+v differs from %+v", got, want)
	case !got.CreatedAt.Equal(want.CreatedAt), !got.UpdatedAt.Equal(want.UpdatedAt):
		return fmt.Errorf("restored timestamps %v/%v differ from %v/%v",
			got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
	case got.DeletedAt.Valid:
		return errors.New("restored product is still marked deleted")
	}
	return nil
}

func (c *lifecycleTestContext) noProductRowsExist() error {
	var n int64
	if err := c.db.Unscoped().Model(&model.Product{}).Count(&n).Error; err != nil {
		return err
	}
	if n != 0 {
		return fmt.Errorf("expected no product rows, found %d", n)
	}
	return nil
}

func (c *lifecycleTestContext) noImagesAreStored() error {
	if n := c.backend.Len(); n != 0 {
		return fmt.Errorf("expected no stored images, found %d", n)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &lifecycleTestContext{}

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.close()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty catalogue$`, tc.anEmptyCatalogue)
	ctx.Step(`^a product type named "([^"]*)"$`, tc.aProductTypeNamed)
	ctx.Step(`^the product type "([^"]*)" is destroyed$`, tc.theProductTypeIsDestroyed)

	// When steps
	ctx.Step(`^I create a product "([^"]*)" priced (\d+\.\d+) of type "([^"]*)" with a PNG photo$`, tc.iCreateAProductOfTypeWithAPNGPhoto)
	ctx.Step(`^I create a product "([^"]*)" priced (\d+\.\d+) of type "([^"]*)" with photo "([^"]*)"$`, tc.iCreateAProductOfTypeWithPhoto)
	ctx.Step(`^I create a product "([^"]*)" priced (\d+\.\d+) of type id (\d+)$`, tc.iCreateAProductOfTypeID)
	ctx.Step(`^I destroy the product$`, tc.iDestroyTheProduct)
	ctx.Step(`^I restore the product$`, tc.iRestoreTheProduct)
	ctx.Step(`^I restore product type (\d+)$`, tc.iRestoreProductType)
	ctx.Step(`^I restore the product type "([^"]*)"$`, tc.iRestoreTheProductTypeNamed)

	// Then steps
	ctx.Step(`^the operation succeeds$`, tc.theOperationSucceeds)
	ctx.Step(`^the operation fails with not found$`, tc.theOperationFailsWithNotFound)
	ctx.Step(`^the operation fails with invalid binary content$`, tc.theOperationFailsWithInvalidBinaryContent)
	ctx.Step(`^the product price is (\d+\.\d+)$`, tc.theProductPriceIs)
	ctx.Step(`^the product photo resolves to a stored PNG image$`, tc.theProductPhotoResolvesToAStoredPNGImage)
	ctx.Step(`^the product list includes "([^"]*)"$`, tc.theProductListIncludes)
	ctx.Step(`^the product list does not include "([^"]*)"$`, tc.theProductListDoesNotInclude)
	ctx.Step(`^the restored product equals the created product$`, tc.theRestoredProductEqualsTheCreatedProduct)
	ctx.Step(`^no product rows exist$`, tc.noProductRowsExist)
	ctx.Step(`^no images are stored$`, tc.noImagesAreStored)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"lifecycle.feature"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
