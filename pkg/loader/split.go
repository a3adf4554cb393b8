package loader

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// testCount returns ceil(testSize*n), the number of held-out rows.
func testCount(n int, testSize float64) (int, error) {
	if testSize <= 0 || testSize >= 1 {
		return 0, fmt.Errorf("loader: test size %v must be in (0, 1)", testSize)
	}
	if n < 2 {
		return 0, errors.New("loader: need at least two rows to split")
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		return 0, fmt.Errorf("loader: test size %v leaves no training rows", testSize)
	}
	return nTest, nil
}

// TrainTestSplit shuffles 0..n-1 with a seeded source and returns the train
// and test row indices.
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	nTest, err := testCount(n, testSize)
	if err != nil {
		return nil, nil, err
	}
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	return indices[nTest:], indices[:nTest], nil
}

// StratifiedSplit returns train and test row indices such that each class
// of y is represented in the test set in proportion to its frequency.
//
// The test set holds ceil(testSize*n) rows. Each class gets the floor of its
// proportional share; the remaining slots go to the largest remainders,
// ties to the more frequent class and then the lower label.
func StratifiedSplit(y []int, testSize float64, seed int64) (train, test []int, err error) {
	n := len(y)
	nTest, err := testCount(n, testSize)
	if err != nil {
		return nil, nil, err
	}

	members := make(map[int][]int)
	for i, c := range y {
		members[c] = append(members[c], i)
	}
	classes := make([]int, 0, len(members))
	for c, rows := range members {
		if len(rows) < 2 {
			return nil, nil, fmt.Errorf("loader: class %d has %d member, need at least 2", c, len(rows))
		}
		classes = append(classes, c)
	}
	sort.Ints(classes)

	k := len(classes)
	if nTest < k || n-nTest < k {
		return nil, nil, fmt.Errorf("loader: %d test and %d train rows cannot hold %d classes", nTest, n-nTest, k)
	}

	type share struct {
		class, count, alloc int
		rem                 float64
	}
	shares := make([]share, k)
	assigned := 0
	for i, c := range classes {
		exact := float64(nTest) * float64(len(members[c])) / float64(n)
		alloc := int(math.Floor(exact))
		shares[i] = share{class: c, count: len(members[c]), alloc: alloc, rem: exact - float64(alloc)}
		assigned += alloc
	}
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := shares[order[a]], shares[order[b]]
		if sa.rem != sb.rem {
			return sa.rem > sb.rem
		}
		if sa.count != sb.count {
			return sa.count > sb.count
		}
		return sa.class < sb.class
	})
	for i := 0; assigned < nTest; i = (i + 1) % k {
		s := &shares[order[i]]
		if s.alloc < s.count-1 {
			s.alloc++
			assigned++
		}
	}

	rnd := rand.New(rand.NewSource(seed))
	train = make([]int, 0, n-nTest)
	test = make([]int, 0, nTest)
	for _, s := range shares {
		rows := append([]int(nil), members[s.class]...)
		rnd.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		test = append(test, rows[:s.alloc]...)
		train = append(train, rows[s.alloc:]...)
	}
	rnd.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rnd.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test, nil
}

// Take returns a new matrix holding the rows of X listed in idx.
func Take(X *mat.Dense, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		out.SetRow(i, X.RawRowView(r))
	}
	return out
}

// TakeInts returns y[idx[0]], y[idx[1]], ...
func TakeInts(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}
