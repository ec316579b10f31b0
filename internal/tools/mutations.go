package tools

import (
	"fmt"
	"strings"
	"time"

	apperrors "folio/internal/errors"
	"folio/internal/models"
	"folio/internal/resolve"
)

func (e *Executor) buy(params map[string]interface{}) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(getStringParam(params, "symbol", "")))
	if symbol == "" {
		return toolError("symbol is required")
	}
	amount := getFloatParam(params, "amount", 0)
	price := getFloatParam(params, "price", 0)
	totalCost := getFloatParam(params, "totalCost", 0)
	if amount <= 0 && totalCost > 0 && price > 0 {
		amount = totalCost / price
	}
	if price <= 0 {
		return toolError("price could not be resolved for %s; provide a price or total cost", symbol)
	}
	if amount <= 0 {
		return toolError("amount could not be determined for %s", symbol)
	}
	if totalCost <= 0 {
		totalCost = amount * price
	}
	date := getStringParam(params, "date", time.Now().Format("2006-01-02"))
	accountID := getStringParam(params, "accountId", "")
	assetType := models.AssetType(getStringParam(params, "assetType", string(models.AssetManual)))

	result, err := e.store.Mutate(func(data *models.Snapshot) (interface{}, error) {
		now := time.Now()
		var pos *models.Position
		for i := range data.Positions {
			p := &data.Positions[i]
			if strings.ToUpper(p.Symbol) == symbol && p.AccountID == accountID && !p.IsCash() {
				pos = p
				break
			}
		}
		if pos == nil {
			data.Positions = append(data.Positions, models.Position{
				ID:           models.NewID(),
				Symbol:       symbol,
				Amount:       amount,
				Type:         assetType,
				CostBasis:    totalCost,
				PurchaseDate: date,
				AccountID:    accountID,
				AddedAt:      now,
				UpdatedAt:    now,
			})
			pos = &data.Positions[len(data.Positions)-1]
		} else {
			pos.Amount += amount
			pos.CostBasis += totalCost
			pos.UpdatedAt = now
		}

		if _, ok := data.PriceFor(symbol); !ok {
			if data.Prices == nil {
				data.Prices = map[string]float64{}
			}
			data.Prices[symbol] = price
		}

		tx := models.Transaction{
			ID:           models.NewID(),
			Type:         models.TxBuy,
			Symbol:       symbol,
			Amount:       amount,
			PricePerUnit: price,
			TotalValue:   totalCost,
			PositionID:   pos.ID,
			Date:         date,
			CreatedAt:    now,
		}
		data.Transactions = append(data.Transactions, tx)

		return map[string]interface{}{
			"status":     "bought",
			"symbol":     symbol,
			"amount":     amount,
			"price":      price,
			"totalCost":  totalCost,
			"positionId": pos.ID,
		}, nil
	})
	if err != nil {
		return toolError("buy failed: %v", err)
	}
	e.logger.Info().Str("symbol", symbol).Float64("amount", amount).Float64("price", price).Msg("buy recorded")
	return toolResult(result)
}

func (e *Executor) sell(params map[string]interface{}, all bool) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(getStringParam(params, "symbol", "")))
	positionID := getStringParam(params, "positionId", "")
	price := getFloatParam(params, "price", 0)
	sellPercent := getFloatParam(params, "sellPercent", 0)
	amountArg := getFloatParam(params, "amount", 0)
	date := getStringParam(params, "date", time.Now().Format("2006-01-02"))

	result, err := e.store.Mutate(func(data *models.Snapshot) (interface{}, error) {
		pos, err := findTargetPosition(data, positionID, symbol)
		if err != nil {
			return nil, err
		}

		units := pos.Amount
		if !all {
			switch {
			case sellPercent > 0:
				units = pos.Amount * sellPercent / 100
			case amountArg > 0:
				units = amountArg
			default:
				return nil, fmt.Errorf("%w: amount or sellPercent required", apperrors.ErrInvalidArgument)
			}
			if units > pos.Amount {
				units = pos.Amount
			}
		}

		avgCost := 0.0
		if pos.Amount > 0 && pos.CostBasis > 0 {
			avgCost = pos.CostBasis / pos.Amount
		}
		estimated := false
		if price <= 0 {
			if p, ok := data.PriceFor(pos.Symbol); ok && p > 0 {
				price = p
			} else if avgCost > 0 {
				price = avgCost
				estimated = true
			} else {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrPriceUnavailable, pos.Symbol)
			}
		}

		costOfSold := avgCost * units
		realized := (price - avgCost) * units
		now := time.Now()

		tx := models.Transaction{
			ID:                   models.NewID(),
			Type:                 models.TxSell,
			Symbol:               pos.Symbol,
			Amount:               units,
			PricePerUnit:         price,
			TotalValue:           units * price,
			CostBasisAtExecution: costOfSold,
			RealizedPnL:          realized,
			PositionID:           pos.ID,
			Date:                 date,
			CreatedAt:            now,
		}
		data.Transactions = append(data.Transactions, tx)

		soldOut := all || units >= pos.Amount
		if soldOut {
			removePositionByID(data, pos.ID)
		} else {
			pos.Amount -= units
			pos.CostBasis -= costOfSold
			if pos.CostBasis < 0 {
				pos.CostBasis = 0
			}
			pos.UpdatedAt = now
		}

		result := map[string]interface{}{
			"status":      "sold",
			"symbol":      tx.Symbol,
			"amount":      units,
			"price":       price,
			"proceeds":    tx.TotalValue,
			"realizedPnL": realized,
			"closed":      soldOut,
		}
		if estimated {
			result["note"] = "price estimated from cost basis"
		}
		return result, nil
	})
	if err != nil {
		return toolError("sell failed: %v", err)
	}
	e.logger.Info().Str("symbol", symbol).Bool("all", all).Msg("sell recorded")
	return toolResult(result)
}

func (e *Executor) removePosition(params map[string]interface{}) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(getStringParam(params, "symbol", "")))
	positionID := getStringParam(params, "positionId", "")

	result, err := e.store.Mutate(func(data *models.Snapshot) (interface{}, error) {
		pos, err := findTargetPosition(data, positionID, symbol)
		if err != nil {
			return nil, err
		}
		removed := pos.Symbol
		removePositionByID(data, pos.ID)
		return map[string]interface{}{"status": "removed", "symbol": removed}, nil
	})
	if err != nil {
		return toolError("remove failed: %v", err)
	}
	return toolResult(result)
}

func (e *Executor) updatePosition(params map[string]interface{}) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(getStringParam(params, "symbol", "")))
	positionID := getStringParam(params, "positionId", "")
	amount := getFloatParam(params, "amount", -1)
	costBasis := getFloatParam(params, "costBasis", -1)
	name := getStringParam(params, "name", "")

	result, err := e.store.Mutate(func(data *models.Snapshot) (interface{}, error) {
		pos, err := findTargetPosition(data, positionID, symbol)
		if err != nil {
			return nil, err
		}
		changed := map[string]interface{}{}
		if amount >= 0 {
			pos.Amount = amount
			changed["amount"] = amount
		}
		if costBasis >= 0 {
			pos.CostBasis = costBasis
			changed["costBasis"] = costBasis
		}
		if name != "" {
			pos.Name = name
			changed["name"] = name
		}
		if len(changed) == 0 {
			return nil, fmt.Errorf("%w: nothing to update", apperrors.ErrInvalidArgument)
		}
		pos.UpdatedAt = time.Now()
		return map[string]interface{}{"status": "updated", "symbol": pos.Symbol, "changed": changed}, nil
	})
	if err != nil {
		return toolError("update failed: %v", err)
	}
	return toolResult(result)
}

func (e *Executor) setPrice(params map[string]interface{}) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(getStringParam(params, "symbol", "")))
	price := getFloatParam(params, "price", 0)
	if price <= 0 {
		price = getFloatParam(params, "newPrice", 0)
	}
	if symbol == "" || price <= 0 {
		return toolError("symbol and a positive price are required")
	}

	result, err := e.store.Mutate(func(data *models.Snapshot) (interface{}, error) {
		if data.CustomPrices == nil {
			data.CustomPrices = map[string]float64{}
		}
		data.CustomPrices[symbol] = price
		return map[string]interface{}{"status": "price set", "symbol": symbol, "price": price}, nil
	})
	if err != nil {
		return toolError("set price failed: %v", err)
	}
	return toolResult(result)
}

func (e *Executor) addCash(params map[string]interface{}) (string, error) {
	positionID := getStringParam(params, "positionId", "")
	currency := getStringParam(params, "currency", "")
	accountID := getStringParam(params, "accountId", "")
	amount := getFloatParam(params, "amount", 0)
	if amount <= 0 {
		return toolError("a positive amount is required")
	}

	result, err := e.store.Mutate(func(data *models.Snapshot) (interface{}, error) {
		var pos *models.Position
		if positionID != "" {
			pos = data.PositionByID(positionID)
		}
		if pos == nil {
			found := resolve.ResolveCashPosition(data.Positions, currency, accountID)
			if found == nil {
				return nil, fmt.Errorf("%w: no unique %s cash position", apperrors.ErrPositionNotFound, currency)
			}
			pos = data.PositionByID(found.ID)
		}
		if pos == nil || !pos.IsCash() {
			return nil, fmt.Errorf("%w: not a cash position", apperrors.ErrInvalidArgument)
		}
		pos.Amount += amount
		pos.UpdatedAt = time.Now()
		return map[string]interface{}{
			"status":     "cash added",
			"symbol":     pos.Symbol,
			"added":      amount,
			"newBalance": pos.Amount,
		}, nil
	})
	if err != nil {
		return toolError("add cash failed: %v", err)
	}
	return toolResult(result)
}

func (e *Executor) addWallet(params map[string]interface{}) (string, error) {
	address := strings.TrimSpace(getStringParam(params, "address", ""))
	if address == "" {
		return toolError("address is required")
	}
	name := getStringParam(params, "name", address)
	source := models.DataSource(getStringParam(params, "dataSource", string(models.SourceDebank)))
	var chains []string
	if raw, ok := params["chains"].([]interface{}); ok {
		for _, c := range raw {
			if s, ok := c.(string); ok {
				chains = append(chains, s)
			}
		}
	}

	result, err := e.store.Mutate(func(data *models.Snapshot) (interface{}, error) {
		for _, a := range data.Accounts {
			if strings.EqualFold(a.Connection.Address, address) {
				return nil, fmt.Errorf("wallet %s is already tracked as %q", address, a.Name)
			}
		}
		acc := models.Account{
			ID:   models.NewID(),
			Name: name,
			Connection: models.Connection{
				DataSource: source,
				Address:    address,
				Chains:     chains,
			},
			CreatedAt: time.Now(),
		}
		data.Accounts = append(data.Accounts, acc)
		return map[string]interface{}{"status": "wallet added", "accountId": acc.ID, "name": acc.Name}, nil
	})
	if err != nil {
		return toolError("add wallet failed: %v", err)
	}
	return toolResult(result)
}

func (e *Executor) removeWallet(params map[string]interface{}) (string, error) {
	address := strings.TrimSpace(getStringParam(params, "address", ""))
	name := strings.TrimSpace(getStringParam(params, "name", ""))
	if address == "" && name == "" {
		return toolError("address or name is required")
	}

	result, err := e.store.Mutate(func(data *models.Snapshot) (interface{}, error) {
		idx := -1
		for i, a := range data.Accounts {
			if address != "" && strings.EqualFold(a.Connection.Address, address) {
				idx = i
				break
			}
			if name != "" && strings.EqualFold(a.Name, name) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, apperrors.ErrAccountNotFound
		}
		acc := data.Accounts[idx]
		data.Accounts = append(data.Accounts[:idx], data.Accounts[idx+1:]...)

		kept := data.Positions[:0]
		removed := 0
		for _, p := range data.Positions {
			if p.AccountID == acc.ID {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		data.Positions = kept

		return map[string]interface{}{
			"status":           "wallet removed",
			"name":             acc.Name,
			"positionsRemoved": removed,
		}, nil
	})
	if err != nil {
		return toolError("remove wallet failed: %v", err)
	}
	return toolResult(result)
}

func (e *Executor) toggleSetting(params map[string]interface{}) (string, error) {
	setting := getStringParam(params, "setting", "")

	result, err := e.store.Mutate(func(data *models.Snapshot) (interface{}, error) {
		var target *bool
		switch setting {
		case "hideBalances":
			target = &data.Settings.HideBalances
		case "hideDust":
			target = &data.Settings.HideDust
		default:
			return nil, fmt.Errorf("%w: unknown setting %q", apperrors.ErrInvalidArgument, setting)
		}
		if _, ok := params["value"]; ok {
			*target = getBoolParam(params, "value", *target)
		} else {
			*target = !*target
		}
		return map[string]interface{}{"status": "setting updated", "setting": setting, "value": *target}, nil
	})
	if err != nil {
		return toolError("toggle failed: %v", err)
	}
	return toolResult(result)
}

func (e *Executor) setRiskFreeRate(params map[string]interface{}) (string, error) {
	rate := getFloatParam(params, "rate", -1)
	if rate < 0 || rate > 1 {
		return toolError("rate must be a decimal between 0 and 1")
	}

	result, err := e.store.Mutate(func(data *models.Snapshot) (interface{}, error) {
		data.Settings.RiskFreeRate = rate
		return map[string]interface{}{"status": "risk-free rate set", "rate": rate}, nil
	})
	if err != nil {
		return toolError("set risk-free rate failed: %v", err)
	}
	return toolResult(result)
}

func (e *Executor) navigate(params map[string]interface{}) (string, error) {
	view := getStringParam(params, "view", "")
	if view == "" {
		return toolError("view is required")
	}
	return toolResult(map[string]string{"navigate": view})
}

// findTargetPosition locates the position a mutation applies to: by id when
// the resolution pipeline supplied one, else by unique exact symbol match. A
// tie is an error; mutations never guess between positions.
func findTargetPosition(data *models.Snapshot, positionID, symbol string) (*models.Position, error) {
	if positionID != "" {
		if pos := data.PositionByID(positionID); pos != nil {
			return pos, nil
		}
		return nil, fmt.Errorf("%w: id %s", apperrors.ErrPositionNotFound, positionID)
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol required", apperrors.ErrInvalidArgument)
	}

	var found *models.Position
	for i := range data.Positions {
		if strings.ToUpper(data.Positions[i].Symbol) == symbol {
			if found != nil {
				return nil, fmt.Errorf("%w: %s held in multiple positions", apperrors.ErrAmbiguousMatch, symbol)
			}
			found = &data.Positions[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, symbol)
	}
	return found, nil
}

func removePositionByID(data *models.Snapshot, id string) {
	for i := range data.Positions {
		if data.Positions[i].ID == id {
			data.Positions = append(data.Positions[:i], data.Positions[i+1:]...)
			return
		}
	}
}
