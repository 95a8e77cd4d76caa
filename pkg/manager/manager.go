// Package manager is a small plugin registry that the application bootstrap
// drives. Packages register plugins from init(), the bootstrap then opens
// resources, builds services and components, and wires HTTP routes in a
// deterministic order.
package manager

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/logger"
)

// Dependencies is the injection container handed to service and component
// plugins at init time.
type Dependencies struct {
	DB          *gorm.DB
	Config      *config.Config
	PipelineApp interface{}
}

// Resource is an external handle with a process lifetime, such as a database
// pool or a message broker client.
type Resource interface {
	MustOpen()
	Close()
}

type ResourcePlugin interface {
	Name() string
	MustCreateResource() Resource
}

// Component is a long-running background unit started after all services are
// wired and stopped before resources are closed.
type Component interface {
	Start() error
	Stop() error
	GetName() string
}

type ComponentPlugin interface {
	Name() string
	MustCreateComponent(deps *Dependencies) Component
}

// Controller registers HTTP routes on the shared engine.
type Controller interface {
	RegisterRoutes(router *gin.Engine)
}

type ControllerPlugin interface {
	Name() string
	MustCreateController() Controller
}

// ServicePlugin builds a domain or application service that other plugins
// retrieve through their own singletons.
type ServicePlugin interface {
	Name() string
	MustCreateService(deps *Dependencies)
}

var (
	mu                sync.Mutex
	resourcePlugins   []ResourcePlugin
	servicePlugins    []ServicePlugin
	componentPlugins  []ComponentPlugin
	controllerPlugins []ControllerPlugin

	openedResources []namedResource
	liveComponents  []Component
)

type namedResource struct {
	name     string
	resource Resource
}

func RegisterResourcePlugin(p ResourcePlugin) {
	mu.Lock()
	defer mu.Unlock()
	resourcePlugins = append(resourcePlugins, p)
}

func RegisterServicePlugin(p ServicePlugin) {
	mu.Lock()
	defer mu.Unlock()
	servicePlugins = append(servicePlugins, p)
}

func RegisterComponentPlugin(p ComponentPlugin) {
	mu.Lock()
	defer mu.Unlock()
	componentPlugins = append(componentPlugins, p)
}

func RegisterControllerPlugin(p ControllerPlugin) {
	mu.Lock()
	defer mu.Unlock()
	controllerPlugins = append(controllerPlugins, p)
}

// MustInitResources opens every registered resource in registration order.
// A failing resource panics; the process cannot run without its resources.
func MustInitResources() {
	mu.Lock()
	plugins := make([]ResourcePlugin, len(resourcePlugins))
	copy(plugins, resourcePlugins)
	mu.Unlock()

	for _, p := range plugins {
		logger.Infof("Opening resource name=%s", p.Name())
		res := p.MustCreateResource()
		res.MustOpen()
		openedResources = append(openedResources, namedResource{name: p.Name(), resource: res})
	}
}

// CloseResources closes resources in reverse open order.
func CloseResources() {
	for i := len(openedResources) - 1; i >= 0; i-- {
		r := openedResources[i]
		logger.Infof("Closing resource name=%s", r.name)
		r.resource.Close()
	}
	openedResources = nil
}

func MustInitServices(deps *Dependencies) {
	mu.Lock()
	plugins := make([]ServicePlugin, len(servicePlugins))
	copy(plugins, servicePlugins)
	mu.Unlock()

	for _, p := range plugins {
		logger.Infof("Initializing service name=%s", p.Name())
		p.MustCreateService(deps)
	}
}

// MustInitComponents builds and starts every registered component.
func MustInitComponents(deps *Dependencies) {
	mu.Lock()
	plugins := make([]ComponentPlugin, len(componentPlugins))
	copy(plugins, componentPlugins)
	mu.Unlock()

	for _, p := range plugins {
		logger.Infof("Initializing component name=%s", p.Name())
		c := p.MustCreateComponent(deps)
		if err := c.Start(); err != nil {
			panic(fmt.Sprintf("failed to start component %s: %v", c.GetName(), err))
		}
		liveComponents = append(liveComponents, c)
	}
}

// RegisterAllRoutes lets every controller plugin mount its routes.
func RegisterAllRoutes(router *gin.Engine) {
	mu.Lock()
	plugins := make([]ControllerPlugin, len(controllerPlugins))
	copy(plugins, controllerPlugins)
	mu.Unlock()

	for _, p := range plugins {
		logger.Infof("Registering routes name=%s", p.Name())
		p.MustCreateController().RegisterRoutes(router)
	}
}

// Shutdown stops components in reverse start order. Resources stay open so
// components can flush during Stop; CloseResources runs afterwards.
func Shutdown() {
	for i := len(liveComponents) - 1; i >= 0; i-- {
		c := liveComponents[i]
		if err := c.Stop(); err != nil {
			logger.Warnf("Failed to stop component name=%s error=%v", c.GetName(), err)
		}
	}
	liveComponents = nil
}
