package acceptance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"

	"github.com/fastapi1403/building-management/internal/app"
	"github.com/fastapi1403/building-management/internal/config"
	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/routes"
	"github.com/fastapi1403/building-management/internal/utils"
)

// FeatureContext drives an in-process server backed by the memory store.
// Records are addressed by the names the scenarios give them.
type FeatureContext struct {
	server   *httptest.Server
	ids      map[string]string
	status   int
	body     []byte
	listSize int
}

func NewFeatureContext() *FeatureContext {
	utils.Logger.SetOutput(io.Discard)
	utils.Logger.SetLevel(logrus.PanicLevel)
	return &FeatureContext{}
}

func (fc *FeatureContext) RegisterSteps(ctx *godog.ScenarioContext) {
	ctx.Before(fc.startServer)
	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if fc.server != nil {
			fc.server.Close()
		}
		return ctx, err
	})

	// Setup
	ctx.Given(`^a building "([^"]*)" with (\d+) floors$`, fc.aBuilding)
	ctx.Given(`^a floor "([^"]*)" numbered (\d+) in building "([^"]*)"$`, fc.aFloor)
	ctx.Given(`^a unit "([^"]*)" on floor "([^"]*)"$`, fc.aUnit)

	// Actions
	ctx.When(`^I create a floor "([^"]*)" numbered (\d+) in building "([^"]*)"$`, fc.iCreateAFloor)
	ctx.Step(`^I soft delete (building|floor|unit) "([^"]*)"$`, fc.iSoftDelete)
	ctx.Step(`^I restore (building|floor|unit) "([^"]*)"$`, fc.iRestore)
	ctx.When(`^I permanently delete (building|floor|unit) "([^"]*)"$`, fc.iPermanentlyDelete)
	ctx.When(`^I permanently delete (building|floor|unit) "([^"]*)" with cascade$`, fc.iPermanentlyDeleteWithCascade)
	ctx.When(`^I list units of floor "([^"]*)"$`, fc.iListUnitsOfFloor)
	ctx.When(`^I list units of floor "([^"]*)" including deleted$`, fc.iListUnitsOfFloorIncludingDeleted)

	// Assertions
	ctx.Then(`^the response status code should be (\d+)$`, fc.theResponseStatusCodeShouldBe)
	ctx.Then(`^the error reason should be "([^"]*)"$`, fc.theErrorReasonShouldBe)
	ctx.Then(`^(building|floor|unit) "([^"]*)" should be soft deleted$`, fc.shouldBeSoftDeleted)
	ctx.Then(`^(building|floor|unit) "([^"]*)" should be soft deleted by cascade$`, fc.shouldBeSoftDeletedByCascade)
	ctx.Then(`^(building|floor|unit) "([^"]*)" should be active$`, fc.shouldBeActive)
	ctx.Then(`^(building|floor|unit) "([^"]*)" should not exist$`, fc.shouldNotExist)
	ctx.Then(`^(building|floor|unit) "([^"]*)" should be listed as a blocking child$`, fc.shouldBeBlockingChild)
	ctx.Then(`^the history of (building|floor|unit) "([^"]*)" should end with "([^"]*)"$`, fc.historyShouldEndWith)
	ctx.Then(`^the list should have (\d+) entries$`, fc.theListShouldHaveEntries)
}

func (fc *FeatureContext) startServer(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
	cfg := &config.Config{
		AppName:                       config.AppName,
		StoreDriver:                   config.StoreDriverMemory,
		DefaultActor:                  "acceptance",
		LDFlag_SoftDeleteCascadeDepth: 1,
		LDFlag_HardDeleteCascadeDepth: 2,
	}
	application, err := app.NewApp(cfg)
	if err != nil {
		return ctx, err
	}
	handler, err := app.NewRouter(cfg, app.NewServices(cfg, application.Store, application.Cache), nil)
	if err != nil {
		return ctx, err
	}
	fc.server = httptest.NewServer(handler)
	fc.ids = make(map[string]string)
	fc.status, fc.body, fc.listSize = 0, nil, 0
	return ctx, nil
}

func (fc *FeatureContext) call(method, path string, payload any) error {
	var rd io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, fc.server.URL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := fc.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	fc.status = resp.StatusCode
	fc.body, err = io.ReadAll(resp.Body)
	return err
}

func (fc *FeatureContext) id(name string) (string, error) {
	id, ok := fc.ids[name]
	if !ok {
		return "", fmt.Errorf("no record named %q in this scenario", name)
	}
	return id, nil
}

func (fc *FeatureContext) item(entity, name string) (string, error) {
	id, err := fc.id(name)
	if err != nil {
		return "", err
	}
	return routes.Collection(models.EntityType(entity)) + "/" + id, nil
}

func (fc *FeatureContext) create(t models.EntityType, name string, payload map[string]any) error {
	if err := fc.call(http.MethodPost, routes.Collection(t), payload); err != nil {
		return err
	}
	if fc.status != http.StatusCreated {
		return fmt.Errorf("creating %s %q: status %d: %s", t, name, fc.status, fc.body)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(fc.body, &created); err != nil {
		return err
	}
	fc.ids[name] = created.ID
	return nil
}

func (fc *FeatureContext) aBuilding(name string, floors int) error {
	return fc.create(models.EntityBuilding, name, map[string]any{"name": name, "total_floors": floors})
}

func (fc *FeatureContext) aFloor(name string, number int, building string) error {
	buildingID, err := fc.id(building)
	if err != nil {
		return err
	}
	return fc.create(models.EntityFloor, name, map[string]any{"building_id": buildingID, "number": number, "name": name})
}

func (fc *FeatureContext) aUnit(name, floor string) error {
	floorID, err := fc.id(floor)
	if err != nil {
		return err
	}
	return fc.create(models.EntityUnit, name, map[string]any{"floor_id": floorID, "unit_number": name, "area": 42.5})
}

func (fc *FeatureContext) iCreateAFloor(name string, number int, building string) error {
	buildingID, err := fc.id(building)
	if err != nil {
		return err
	}
	return fc.call(http.MethodPost, routes.Collection(models.EntityFloor), map[string]any{"building_id": buildingID, "number": number, "name": name})
}

func (fc *FeatureContext) iSoftDelete(entity, name string) error {
	path, err := fc.item(entity, name)
	if err != nil {
		return err
	}
	return fc.call(http.MethodDelete, path, nil)
}

func (fc *FeatureContext) iRestore(entity, name string) error {
	path, err := fc.item(entity, name)
	if err != nil {
		return err
	}
	return fc.call(http.MethodPost, path+"/restore", nil)
}

func (fc *FeatureContext) iPermanentlyDelete(entity, name string) error {
	path, err := fc.item(entity, name)
	if err != nil {
		return err
	}
	return fc.call(http.MethodDelete, path+"/permanent", nil)
}

func (fc *FeatureContext) iPermanentlyDeleteWithCascade(entity, name string) error {
	path, err := fc.item(entity, name)
	if err != nil {
		return err
	}
	return fc.call(http.MethodDelete, path+"/permanent?cascade=true", nil)
}

func (fc *FeatureContext) listUnits(floor string, includeDeleted bool) error {
	floorID, err := fc.id(floor)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("%s?parentId=%s&includeDeleted=%t", routes.Collection(models.EntityUnit), floorID, includeDeleted)
	if err := fc.call(http.MethodGet, path, nil); err != nil {
		return err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(fc.body, &rows); err != nil {
		return fmt.Errorf("decoding list: %w: %s", err, fc.body)
	}
	fc.listSize = len(rows)
	return nil
}

func (fc *FeatureContext) iListUnitsOfFloor(floor string) error {
	return fc.listUnits(floor, false)
}

func (fc *FeatureContext) iListUnitsOfFloorIncludingDeleted(floor string) error {
	return fc.listUnits(floor, true)
}

func (fc *FeatureContext) theResponseStatusCodeShouldBe(code int) error {
	if fc.status != code {
		return fmt.Errorf("expected status %d, got %d: %s", code, fc.status, fc.body)
	}
	return nil
}

func (fc *FeatureContext) errorBody() (utils.ErrorResponse, error) {
	var body utils.ErrorResponse
	err := json.Unmarshal(fc.body, &body)
	return body, err
}

func (fc *FeatureContext) theErrorReasonShouldBe(reason string) error {
	body, err := fc.errorBody()
	if err != nil {
		return err
	}
	if body.Reason != reason {
		return fmt.Errorf("expected reason %q, got %q", reason, body.Reason)
	}
	return nil
}

// fetch reads the record without disturbing the last response.
func (fc *FeatureContext) fetch(entity, name string) (int, models.Base, error) {
	status, body := fc.status, fc.body
	defer func() { fc.status, fc.body = status, body }()

	path, err := fc.item(entity, name)
	if err != nil {
		return 0, models.Base{}, err
	}
	if err := fc.call(http.MethodGet, path, nil); err != nil {
		return 0, models.Base{}, err
	}
	var base models.Base
	if fc.status == http.StatusOK {
		if err := json.Unmarshal(fc.body, &base); err != nil {
			return 0, base, err
		}
	}
	return fc.status, base, nil
}

func (fc *FeatureContext) shouldBeSoftDeleted(entity, name string) error {
	status, base, err := fc.fetch(entity, name)
	if err != nil {
		return err
	}
	if status != http.StatusOK || !base.IsDeleted || base.DeletedAt == nil {
		return fmt.Errorf("%s %q is not soft deleted (status %d)", entity, name, status)
	}
	return nil
}

func (fc *FeatureContext) shouldBeSoftDeletedByCascade(entity, name string) error {
	if err := fc.shouldBeSoftDeleted(entity, name); err != nil {
		return err
	}
	_, base, err := fc.fetch(entity, name)
	if err != nil {
		return err
	}
	if !base.DeletedByCascade {
		return fmt.Errorf("%s %q was deleted directly, not by cascade", entity, name)
	}
	return nil
}

func (fc *FeatureContext) shouldBeActive(entity, name string) error {
	status, base, err := fc.fetch(entity, name)
	if err != nil {
		return err
	}
	if status != http.StatusOK || base.IsDeleted {
		return fmt.Errorf("%s %q is not active (status %d)", entity, name, status)
	}
	return nil
}

func (fc *FeatureContext) shouldNotExist(entity, name string) error {
	status, _, err := fc.fetch(entity, name)
	if err != nil {
		return err
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("expected %s %q to be gone, got status %d", entity, name, status)
	}
	return nil
}

func (fc *FeatureContext) shouldBeBlockingChild(entity, name string) error {
	id, err := fc.id(name)
	if err != nil {
		return err
	}
	var body struct {
		Details struct {
			BlockingChildren []models.EntityRef `json:"blocking_children"`
		} `json:"details"`
	}
	if err := json.Unmarshal(fc.body, &body); err != nil {
		return err
	}
	for _, ref := range body.Details.BlockingChildren {
		if string(ref.Type) == entity && ref.ID.String() == id {
			return nil
		}
	}
	return fmt.Errorf("%s %q not among blocking children %v", entity, name, body.Details.BlockingChildren)
}

func (fc *FeatureContext) historyShouldEndWith(entity, name, action string) error {
	path, err := fc.item(entity, name)
	if err != nil {
		return err
	}
	if err := fc.call(http.MethodGet, path+"/history", nil); err != nil {
		return err
	}
	if fc.status != http.StatusOK {
		return fmt.Errorf("history status %d: %s", fc.status, fc.body)
	}
	var entries []models.AuditLog
	if err := json.Unmarshal(fc.body, &entries); err != nil {
		return err
	}
	if len(entries) == 0 || string(entries[len(entries)-1].Action) != action {
		return fmt.Errorf("history of %s %q does not end with %s: %s", entity, name, action, fc.body)
	}
	return nil
}

func (fc *FeatureContext) theListShouldHaveEntries(n int) error {
	if fc.listSize != n {
		return fmt.Errorf("expected %d entries, got %d", n, fc.listSize)
	}
	return nil
}
