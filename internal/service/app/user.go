package app

import (
	"errors"

	"lockchat/internal/model"
	"lockchat/internal/utils/log"

	"go.uber.org/zap"
)

// getUserAndRegisterIfNotExist returns the user with the parameters the relay
// has on record, publishing the configured ones on first use.
func (c *App) getUserAndRegisterIfNotExist(username string) (*model.User, error) {
	params, err := c.getParamsOfUser(username)
	if err == nil {
		if params != c.cfg.Params {
			log.Info("using published parameters instead of configured ones",
				zap.Int("g", params.G), zap.Int("n", params.N))
		}
		return &model.User{Name: username, G: params.G, N: params.N}, nil
	}
	if !errors.Is(err, errNotFound) {
		return nil, err
	}

	user := &model.User{
		Name: username,
		G:    c.cfg.Params.G,
		N:    c.cfg.Params.N,
	}
	if err := c.registerUser(user); err != nil {
		return nil, err
	}
	return user, nil
}
