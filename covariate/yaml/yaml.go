/*
Package yaml provides methods to parse covariate.Covariate specifications,
also known as metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"os"

	"github.com/pbanos/grove/covariate"
	yaml "gopkg.in/yaml.v2"
)

/*
ReadCovariates takes a slice of bytes with a covariate specification in YML and
returns a slice of covariates parsed from it or an error.
The YML is expected to be an object containing a covariates property. Its value
should be a list with an object for each covariate, in index order, with its
name, its type (numeric, factor or boolean), the list of levels for factor
covariates and optionally whether it takes missing values (na) and whether its
splits are penalized for them (naPenalty). For example:

	covariates:
	- name: age
	  type: numeric
	  na: true
	- name: pet
	  type: factor
	  levels: [dog, cat, mouse]
*/
func ReadCovariates(md []byte) ([]covariate.Covariate, error) {
	metadata := struct {
		Covariates []covariate.Settings `yaml:"covariates"`
	}{}
	err := yaml.UnmarshalStrict(md, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing yml covariates: %w", err)
	}
	if len(metadata.Covariates) == 0 {
		return nil, fmt.Errorf("metadata has no covariate information")
	}
	return covariate.Build(metadata.Covariates)
}

/*
ReadCovariatesFromFile takes a filepath string, reads its contents and uses
ReadCovariates to parse it and return a slice of parsed covariates or an error.
*/
func ReadCovariatesFromFile(filepath string) ([]covariate.Covariate, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading covariates yml file %s: %w", filepath, err)
	}
	covariates, err := ReadCovariates(md)
	if err != nil {
		err = fmt.Errorf("parsing covariates yml file %s: %w", filepath, err)
	}
	return covariates, err
}

/*
WriteCovariates takes a slice of covariates and returns the YML document that
ReadCovariates parses back into them.
*/
func WriteCovariates(covariates []covariate.Covariate) ([]byte, error) {
	metadata := struct {
		Covariates []covariate.Settings `yaml:"covariates"`
	}{}
	for _, c := range covariates {
		metadata.Covariates = append(metadata.Covariates, covariate.SettingsOf(c))
	}
	return yaml.Marshal(metadata)
}
