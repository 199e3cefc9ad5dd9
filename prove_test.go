package aggregator

import (
	"bytes"
	"path/filepath"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	kzgbls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/stretchr/testify/require"

	"github.com/eon-protocol/pi-aggregator/circuits/layout"
)

// cubeCircuit checks Y == X^3 + X + 5, with Y public.
type cubeCircuit struct {
	Y frontend.Variable `gnark:",public"`
	X frontend.Variable
}

func (c *cubeCircuit) Define(api frontend.API) error {
	x3 := api.Mul(c.X, c.X, c.X)
	api.AssertIsEqual(c.Y, api.Add(x3, c.X, 5))
	return nil
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.SRSDir = t.TempDir()
	return cfg
}

func TestPk_ProveVerify(t *testing.T) {
	var pk Pk
	require.NoError(t, pk.Compile(&cubeCircuit{}, testConfig(t)))

	publics, proof, err := pk.Prove(&cubeCircuit{Y: 35, X: 3})
	require.NoError(t, err)
	require.Len(t, publics, 1)
	require.Equal(t, uint64(35), publics[0].Uint64())

	vk := pk.Vk()
	require.Equal(t, 1, vk.NumPublic())
	require.NoError(t, vk.Verify(proof, publics))

	wrong := []fr.Element{fr.NewElement(36)}
	require.Error(t, vk.Verify(proof, wrong))
	require.ErrorIs(t, vk.Verify(proof, nil), ErrInvalidInstance)

	_, _, err = pk.Prove(&cubeCircuit{Y: 36, X: 3})
	require.Error(t, err)
}

func TestPk_Serialization(t *testing.T) {
	var pk Pk
	require.NoError(t, pk.Compile(&cubeCircuit{}, testConfig(t)))
	publics, proof, err := pk.Prove(&cubeCircuit{Y: 15, X: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	vk := pk.Vk()
	_, err = vk.WriteTo(&buf)
	require.NoError(t, err)
	var vk2 Vk
	_, err = vk2.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, vk.CircuitID(), vk2.CircuitID())

	buf.Reset()
	_, err = proof.WriteTo(&buf)
	require.NoError(t, err)
	var proof2 Proof
	_, err = proof2.ReadFrom(&buf)
	require.NoError(t, err)
	require.NoError(t, vk2.Verify(&proof2, publics))

	buf.Reset()
	_, err = pk.WriteTo(&buf)
	require.NoError(t, err)
	var pk2 Pk
	_, err = pk2.ReadFrom(&buf)
	require.NoError(t, err)
	require.NoError(t, pk2.Configure(DefaultConfig()))
	publics, proof, err = pk2.Prove(&cubeCircuit{Y: 15, X: 2})
	require.NoError(t, err)
	require.NoError(t, vk.Verify(proof, publics))
}

func TestVk_CircuitIDDiffers(t *testing.T) {
	var a, b Pk
	require.NoError(t, a.Compile(&cubeCircuit{}, testConfig(t)))
	require.NoError(t, b.Compile(&squareCircuit{}, testConfig(t)))
	va, vb := a.Vk(), b.Vk()
	require.NotEqual(t, va.CircuitID(), vb.CircuitID())
}

type squareCircuit struct {
	Y frontend.Variable `gnark:",public"`
	X frontend.Variable
}

func (c *squareCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.Y, api.Mul(c.X, c.X))
	return nil
}

// powCircuit checks Y == X^16 through a chain of multiplications.
type powCircuit struct {
	Y frontend.Variable `gnark:",public"`
	X frontend.Variable
}

func (c *powCircuit) Define(api frontend.API) error {
	acc := c.X
	for i := 0; i < 15; i++ {
		acc = api.Mul(acc, c.X)
	}
	api.AssertIsEqual(c.Y, acc)
	return nil
}

func TestCheckCircuitSize(t *testing.T) {
	ccs, err := frontend.Compile(FIELD, scs.NewBuilder, &powCircuit{})
	require.NoError(t, err)
	need := ccs.GetNbConstraints() + ccs.GetNbPublicVariables()
	require.Greater(t, need, 4)

	cfg := DefaultConfig()
	require.NoError(t, cfg.CheckCircuitSize(ccs))
	cfg.LogDegree = 2
	require.ErrorIs(t, cfg.CheckCircuitSize(ccs), layout.ErrCapacityExceeded)
}

func TestPk_RejectsOversizedCircuit(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogDegree = 2
	var pk Pk
	require.ErrorIs(t, pk.Compile(&powCircuit{}, cfg), layout.ErrCapacityExceeded)

	cfg.LogDegree = 10
	require.NoError(t, pk.Compile(&powCircuit{}, cfg))
}

func TestHashCompress(t *testing.T) {
	a, b := fr.NewElement(1), fr.NewElement(2)
	require.Equal(t, hashCompress(a, b), hashCompress(a, b))
	require.NotEqual(t, hashCompress(a, b), hashCompress(b, a))
	require.Equal(t, hashCompress(hashCompress(fr.Element{}, a), b), hashSum(a, b))
}

func TestHashPoint(t *testing.T) {
	_, _, g, _ := bls12381.Generators()
	var g2 bls12381.G1Affine
	g2.Double(&g)
	require.Equal(t, hashPoint(g), hashPoint(g))
	require.NotEqual(t, hashPoint(g), hashPoint(g2))
}

func TestReadSRS_Cache(t *testing.T) {
	cfg := testConfig(t)
	ccs, err := frontend.Compile(FIELD, scs.NewBuilder, &cubeCircuit{})
	require.NoError(t, err)
	sizec, sizel := plonk.SRSSize(ccs)

	// nothing cached and no url: an insecure srs, never written to disk
	c, l, err := ReadSRS(ccs, cfg)
	require.NoError(t, err)
	require.Len(t, c.Pk.G1, sizec)
	require.Len(t, l.Pk.G1, sizel)
	require.NoFileExists(t, filepath.Join(cfg.SRSDir, srsCanonicalFile))

	require.NoError(t, writeSRSFile(filepath.Join(cfg.SRSDir, srsCanonicalFile), c))
	c1, l1, err := ReadSRS(ccs, cfg)
	require.NoError(t, err)
	require.Equal(t, c.Pk.G1, c1.Pk.G1)
	require.Len(t, l1.Pk.G1, sizel)
	require.FileExists(t, filepath.Join(cfg.SRSDir, srsLagrangeFile(sizel)))

	_, l2, err := ReadSRS(ccs, cfg)
	require.NoError(t, err)
	require.Equal(t, l1.Pk.G1, l2.Pk.G1)
}

func TestReadSRS_TooSmall(t *testing.T) {
	cfg := testConfig(t)
	ccs, err := frontend.Compile(FIELD, scs.NewBuilder, &cubeCircuit{})
	require.NoError(t, err)
	c, _, err := ReadSRS(ccs, cfg)
	require.NoError(t, err)
	small := &kzgbls12381.SRS{Vk: c.Vk}
	small.Pk.G1 = c.Pk.G1[:2]
	require.NoError(t, writeSRSFile(filepath.Join(cfg.SRSDir, srsCanonicalFile), small))

	_, _, err = ReadSRS(ccs, cfg)
	require.ErrorIs(t, err, ErrSRSTooSmall)
}
