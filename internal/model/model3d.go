package model

import (
	"github.com/kelvin262292/storefront/internal/validation"
)

// ModelFormat is the container format of a 3D asset.
type ModelFormat string

const (
	ModelFormatGLB  ModelFormat = "glb"
	ModelFormatGLTF ModelFormat = "gltf"
)

// ProductModel describes the 3D asset shown in the product viewer and how
// the viewer should present it. Zero values mean "use the viewer default".
type ProductModel struct {
	Base
	ProductID        uint        `json:"productId" gorm:"uniqueIndex;not null"`
	AssetURL         string      `json:"assetUrl" gorm:"column:asset_url;not null"`
	Format           ModelFormat `json:"format" gorm:"not null"`
	SizeBytes        int64       `json:"sizeBytes" gorm:"not null;default:0"`
	PosterURL        string      `json:"posterUrl" gorm:"column:poster_url"`
	CameraOrbit      string      `json:"cameraOrbit"`
	CameraTarget     string      `json:"cameraTarget"`
	FieldOfView      string      `json:"fieldOfView"`
	Exposure         float64     `json:"exposure" gorm:"not null;default:0"`
	ShadowIntensity  float64     `json:"shadowIntensity" gorm:"not null;default:0"`
	EnvironmentImage string      `json:"environmentImage"`
	AutoRotate       bool        `json:"autoRotate" gorm:"not null;default:false"`
	ARModes          string      `json:"arModes" gorm:"column:ar_modes"`
}

// Viewer defaults applied when the stored metadata leaves a value empty.
const (
	DefaultCameraOrbit      = "0deg 75deg 105%"
	DefaultCameraTarget     = "auto auto auto"
	DefaultFieldOfView      = "auto"
	DefaultExposure         = 1.0
	DefaultShadowIntensity  = 1.0
	DefaultEnvironmentImage = "neutral"
	DefaultARModes          = "webxr scene-viewer quick-look"
)

// ViewerCamera positions the camera around the model.
type ViewerCamera struct {
	Orbit       string `json:"orbit"`
	Target      string `json:"target"`
	FieldOfView string `json:"fieldOfView"`
	Controls    bool   `json:"controls"`
}

// ViewerLighting controls tone mapping and shadows.
type ViewerLighting struct {
	Exposure         float64 `json:"exposure"`
	ShadowIntensity  float64 `json:"shadowIntensity"`
	EnvironmentImage string  `json:"environmentImage"`
}

// ViewerLoader tells the renderer what to fetch and when.
type ViewerLoader struct {
	Src       string      `json:"src"`
	Format    ModelFormat `json:"format"`
	SizeBytes int64       `json:"sizeBytes"`
	Poster    string      `json:"poster,omitempty"`
	Loading   string      `json:"loading"`
	Reveal    string      `json:"reveal"`
}

// ViewerConfig is everything the storefront's 3D viewer component needs.
type ViewerConfig struct {
	ProductSlug string         `json:"productSlug"`
	Alt         string         `json:"alt"`
	Loader      ViewerLoader   `json:"loader"`
	Camera      ViewerCamera   `json:"camera"`
	Lighting    ViewerLighting `json:"lighting"`
	AutoRotate  bool           `json:"autoRotate"`
	AR          bool           `json:"ar"`
	ARModes     string         `json:"arModes"`
}

// BuildViewerConfig merges stored metadata with viewer defaults.
func BuildViewerConfig(p *Product, m *ProductModel) ViewerConfig {
	cfg := ViewerConfig{
		ProductSlug: p.Slug,
		Alt:         "3D model of " + p.Name,
		Loader: ViewerLoader{
			Src:       m.AssetURL,
			Format:    m.Format,
			SizeBytes: m.SizeBytes,
			Poster:    m.PosterURL,
			Loading:   "lazy",
			Reveal:    "auto",
		},
		Camera: ViewerCamera{
			Orbit:       orDefault(m.CameraOrbit, DefaultCameraOrbit),
			Target:      orDefault(m.CameraTarget, DefaultCameraTarget),
			FieldOfView: orDefault(m.FieldOfView, DefaultFieldOfView),
			Controls:    true,
		},
		Lighting: ViewerLighting{
			Exposure:         DefaultExposure,
			ShadowIntensity:  DefaultShadowIntensity,
			EnvironmentImage: orDefault(m.EnvironmentImage, DefaultEnvironmentImage),
		},
		AutoRotate: m.AutoRotate,
		ARModes:    orDefault(m.ARModes, DefaultARModes),
	}

	if m.Exposure > 0 {
		cfg.Lighting.Exposure = m.Exposure
	}
	if m.ShadowIntensity > 0 {
		cfg.Lighting.ShadowIntensity = m.ShadowIntensity
	}
	if cfg.Loader.Poster != "" {
		cfg.Loader.Reveal = "interaction"
	}
	// AR needs a binary asset on every supported platform.
	cfg.AR = m.Format == ModelFormatGLB

	return cfg
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// UpsertModelRequest sets viewer metadata. AssetURL may point at an
// external CDN; uploads fill it in automatically.
type UpsertModelRequest struct {
	ProductID        uint        `json:"-" param:"id" validate:"required"`
	AssetURL         string      `json:"assetUrl" validate:"required,max=1000"`
	Format           ModelFormat `json:"format" validate:"required,oneof=glb gltf"`
	SizeBytes        int64       `json:"sizeBytes" validate:"min=0"`
	PosterURL        string      `json:"posterUrl" validate:"omitempty,max=1000"`
	CameraOrbit      string      `json:"cameraOrbit" validate:"max=100"`
	CameraTarget     string      `json:"cameraTarget" validate:"max=100"`
	FieldOfView      string      `json:"fieldOfView" validate:"max=30"`
	Exposure         float64     `json:"exposure" validate:"min=0,max=10"`
	ShadowIntensity  float64     `json:"shadowIntensity" validate:"min=0,max=10"`
	EnvironmentImage string      `json:"environmentImage" validate:"max=1000"`
	AutoRotate       bool        `json:"autoRotate"`
	ARModes          string      `json:"arModes" validate:"max=100"`
}

func (r *UpsertModelRequest) Validate() error {
	return validation.Struct(r)
}

// UploadModelRequest only carries the product id; the file is read from the
// multipart form by the handler.
type UploadModelRequest struct {
	ProductID uint `json:"-" param:"id" validate:"required"`
}

func (r *UploadModelRequest) Validate() error {
	return validation.Struct(r)
}
