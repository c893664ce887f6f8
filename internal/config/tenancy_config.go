package config

import "strconv"

type TenancyConfig interface {
	IsMultiTenancyEnabled() bool
	GetTenantIDHeader() string
}

type Tenancy struct{}

var _ TenancyConfig = Tenancy{}

func (Tenancy) IsMultiTenancyEnabled() bool {
	enabled, err := strconv.ParseBool(GetEnv("MULTI_TENANCY_ENABLED", "true"))
	if err != nil {
		return true
	}
	return enabled
}

func (Tenancy) GetTenantIDHeader() string {
	return "Abp.TenantId"
}
