package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

var ErrDeploymentNotFound = errors.New("deployment not found")

// Deployments is the parsed form of a deployments file:
//
//	pools:
//	  - name: main
//	    env: mainnet-beta
//	    pool: FEmYwTTdM1SrUmtYu2xZjYwDXxVRXKjKDJHe2L1siWTL
//	    protocol_version: 1
type Deployments struct {
	Pools []Deployment `yaml:"pools"`
}

// Deployment is one named pool.
type Deployment struct {
	Name            string `yaml:"name"`
	Env             string `yaml:"env"`
	Pool            string `yaml:"pool"`
	ProtocolVersion uint8  `yaml:"protocol_version"`

	// PoolAddress is Pool parsed during load.
	PoolAddress solana.PublicKey `yaml:"-"`
}

// LoadDeployments reads and validates a deployments file.
func LoadDeployments(path string) (*Deployments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployments file: %w", err)
	}
	return ParseDeployments(data)
}

// ParseDeployments decodes YAML deployments and parses each pool address.
func ParseDeployments(data []byte) (*Deployments, error) {
	var d Deployments
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse deployments: %w", err)
	}
	seen := make(map[string]struct{}, len(d.Pools))
	for i := range d.Pools {
		p := &d.Pools[i]
		if p.Name == "" {
			return nil, fmt.Errorf("deployment %d: name is required", i)
		}
		key := p.Env + "/" + p.Name
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("deployment %q: duplicate name in env %q", p.Name, p.Env)
		}
		seen[key] = struct{}{}
		switch normalizeEnv(p.Env) {
		case EnvMainnetBeta, EnvTestnet, EnvDevnet, EnvLocalnet:
		default:
			return nil, fmt.Errorf("deployment %q: %w %q", p.Name, ErrInvalidEnvironment, p.Env)
		}
		pk, err := solana.PublicKeyFromBase58(p.Pool)
		if err != nil {
			return nil, fmt.Errorf("deployment %q: invalid pool address: %w", p.Name, err)
		}
		p.PoolAddress = pk
	}
	return &d, nil
}

// Lookup returns the deployment named name in env. Mainnet aliases match.
func (d *Deployments) Lookup(env, name string) (*Deployment, error) {
	for i := range d.Pools {
		p := &d.Pools[i]
		if p.Name == name && normalizeEnv(p.Env) == normalizeEnv(env) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrDeploymentNotFound, env, name)
}

func normalizeEnv(env string) string {
	if env == EnvMainnet {
		return EnvMainnetBeta
	}
	return env
}
