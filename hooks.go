package ocho

// Hook is a callback observing the console at a fixed point of the frame
// cycle. Hooks must not retain the console past the call.
type Hook func(c *Console)

// AddBeforeFrameHook adds a hook that runs before every frame
func (c *Console) AddBeforeFrameHook(h Hook) int {
	c.beforeFrameHooks = append(c.beforeFrameHooks, h)

	return len(c.beforeFrameHooks)
}

// AddBeforeCycleHook adds a hook that runs before every cycle
func (c *Console) AddBeforeCycleHook(h Hook) int {
	c.beforeCycleHooks = append(c.beforeCycleHooks, h)

	return len(c.beforeCycleHooks)
}

// AddAfterCycleHook adds a hook that runs after every cycle
func (c *Console) AddAfterCycleHook(h Hook) int {
	c.afterCycleHooks = append(c.afterCycleHooks, h)

	return len(c.afterCycleHooks)
}

// AddAfterFrameHook adds a hook that runs after every frame
func (c *Console) AddAfterFrameHook(h Hook) int {
	c.afterFrameHooks = append(c.afterFrameHooks, h)

	return len(c.afterFrameHooks)
}

// AddErrorHook adds a hook that runs after a cycle or render error
func (c *Console) AddErrorHook(h Hook) int {
	c.errorHooks = append(c.errorHooks, h)

	return len(c.errorHooks)
}

func (c *Console) runHooks(hooks []Hook) {
	for _, h := range hooks {
		h(c)
	}
}
