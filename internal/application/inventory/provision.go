package inventory

import (
	"context"

	"github.com/storefront/console/internal/domain/inventory"
	"github.com/storefront/console/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Provisioning steps, in execution order
const (
	StepCreateProduct = "create_product"
	StepSetStock      = "set_stock"
	StepSetThreshold  = "set_threshold"
)

// StepResult is the outcome of one remote call of a composite flow
type StepResult struct {
	Step    string `json:"step"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ProvisionRequest creates a product and then sets its stock and threshold
type ProvisionRequest struct {
	Product   inventory.NewProduct
	Quantity  int
	Threshold int
	Reason    string
}

// ProvisionResult reports every step independently.
// A failed step never rolls back the steps before it.
type ProvisionResult struct {
	Product *inventory.ProductStock `json:"product,omitempty"`
	Steps   []StepResult            `json:"steps"`
}

// Complete reports whether every step succeeded
func (r *ProvisionResult) Complete() bool {
	for _, s := range r.Steps {
		if !s.OK {
			return false
		}
	}
	return len(r.Steps) > 0
}

// Committed reports whether at least one step reached the store
func (r *ProvisionResult) Committed() bool {
	for _, s := range r.Steps {
		if s.OK {
			return true
		}
	}
	return false
}

// Provision runs create product, set stock and set threshold as three independent calls.
// Stock and threshold are attempted even if the other one fails; both are skipped when the
// product could not be created.
func (s *StockService) Provision(ctx context.Context, req ProvisionRequest) (*ProvisionResult, error) {
	if err := inventory.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := inventory.ValidateThreshold(req.Threshold); err != nil {
		return nil, err
	}

	result := &ProvisionResult{Steps: make([]StepResult, 0, 3)}

	product, err := s.store.CreateProduct(ctx, req.Product)
	if err != nil {
		logger.Ctx(ctx, s.logger).Warn("Product creation failed", zap.String("name", req.Product.Name), zap.Error(err))
		result.Steps = append(result.Steps,
			StepResult{Step: StepCreateProduct, Error: err.Error()},
			StepResult{Step: StepSetStock, Skipped: true},
			StepResult{Step: StepSetThreshold, Skipped: true},
		)
		return result, nil
	}
	result.Product = product
	result.Steps = append(result.Steps, StepResult{Step: StepCreateProduct, OK: true})

	result.Steps = append(result.Steps, stepOf(StepSetStock,
		s.UpdateStock(ctx, product.ID, req.Quantity, req.Reason)))
	result.Steps = append(result.Steps, stepOf(StepSetThreshold,
		s.UpdateThreshold(ctx, product.ID, req.Threshold)))

	if !result.Complete() {
		logger.Ctx(ctx, s.logger).Warn("Product provisioned partially",
			zap.String("product_id", product.ID),
			zap.Any("steps", result.Steps))
	}
	return result, nil
}

func stepOf(step string, err error) StepResult {
	if err != nil {
		return StepResult{Step: step, Error: err.Error()}
	}
	return StepResult{Step: step, OK: true}
}
