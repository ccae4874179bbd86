package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-portal/pkg/prefs"
)

// HomeMenuConfigKey is the user setting holding the ordered app xmlids.
const HomeMenuConfigKey = "homemenu_config"

// Node is an entry of the menu tree.
type Node struct {
	ID         int    `json:"id"`
	AppID      int    `json:"appID"`
	Name       string `json:"name"`
	XMLID      string `json:"xmlid"`
	ActionID   int    `json:"actionID"`
	ActionPath string `json:"actionPath"`
	Children   []Node `json:"childrenTree"`
}

// Provider exposes the host menu service.
type Provider interface {
	MenuTree(ctx context.Context) (Node, error)
	SelectMenu(ctx context.Context, app Node) error
}

// AppMenuService lists the top-level apps in the user's preferred order.
type AppMenuService struct {
	menus    Provider
	settings prefs.Store
	logger   *zap.Logger
}

// NewAppMenuService wires the menu provider and the user settings store.
func NewAppMenuService(menus Provider, settings prefs.Store, logger *zap.Logger) *AppMenuService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppMenuService{menus: menus, settings: settings, logger: logger}
}

// Apps returns the top-level apps, reordered by the homemenu_config setting.
func (s *AppMenuService) Apps(ctx context.Context) ([]Node, error) {
	if s.menus == nil {
		return nil, errors.New("menu: provider is required")
	}
	tree, err := s.menus.MenuTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("menu: load tree: %w", err)
	}
	apps := append([]Node(nil), tree.Children...)
	return ReorderApps(apps, s.order(ctx)), nil
}

// SelectApp opens app through the menu provider.
func (s *AppMenuService) SelectApp(ctx context.Context, app Node) error {
	if s.menus == nil {
		return errors.New("menu: provider is required")
	}
	return s.menus.SelectMenu(ctx, app)
}

// SaveOrder persists the ordered xmlids.
func (s *AppMenuService) SaveOrder(ctx context.Context, xmlids []string) error {
	if s.settings == nil {
		return errors.New("menu: settings store is required")
	}
	data, err := json.Marshal(xmlids)
	if err != nil {
		return err
	}
	return s.settings.Set(ctx, HomeMenuConfigKey, string(data))
}

func (s *AppMenuService) order(ctx context.Context) []string {
	if s.settings == nil {
		return nil
	}
	raw, ok, err := s.settings.Get(ctx, HomeMenuConfigKey)
	if err != nil {
		s.logger.Warn("read home menu config", zap.Error(err))
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		s.logger.Warn("ignoring malformed home menu config", zap.Error(err))
		return nil
	}
	return order
}

// ReorderApps places apps listed in order first, in that order; the others
// follow in their original relative order.
func ReorderApps(apps []Node, order []string) []Node {
	if len(order) == 0 {
		return apps
	}
	index := make(map[string]Node, len(apps))
	for _, app := range apps {
		index[app.XMLID] = app
	}
	result := make([]Node, 0, len(apps))
	seen := make(map[string]struct{}, len(order))
	for _, xmlid := range order {
		if _, dup := seen[xmlid]; dup {
			continue
		}
		if app, ok := index[xmlid]; ok {
			result = append(result, app)
			seen[xmlid] = struct{}{}
		}
	}
	for _, app := range apps {
		if _, ok := seen[app.XMLID]; !ok {
			result = append(result, app)
		}
	}
	return result
}
