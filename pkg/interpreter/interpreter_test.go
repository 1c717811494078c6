package interpreter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/parser"
	"tinylang/interpreter-go/pkg/runtime"
)

func runSource(t *testing.T, source string, opts Options) (string, error) {
	t.Helper()
	stmts, err := parser.ParseSource("main.tl", source, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out bytes.Buffer
	opts.Stdout = &out
	if opts.Stdin == nil {
		opts.Stdin = strings.NewReader("")
	}
	err = New(opts).Run(stmts)
	return out.String(), err
}

func mustRun(t *testing.T, source string) []string {
	t.Helper()
	out, err := runSource(t, source, Options{})
	if err != nil {
		t.Fatalf("run failed: %s", DescribeError(err))
	}
	return splitOutputLines(out)
}

func expectLines(t *testing.T, got []string, want ...string) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("output mismatch\nwant %q\ngot  %q", want, got)
	}
}

func TestEvaluateOperatorPrecedence(t *testing.T) {
	interp := New(Options{})
	product := ast.Bin("+", ast.Int(2), ast.Bin("*", ast.Int(3), ast.Int(4)))
	val, err := interp.Evaluate(product)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if val != (runtime.IntegerValue{Val: 14}) {
		t.Fatalf("expected 14, got %#v", val)
	}

	expectLines(t, mustRun(t, "print(2 + 3 * 4);\nprint((2 + 3) * 4);\nprint(10 - 4 - 3);\nprint(7 / 2);"),
		"14", "20", "3", "3")
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	expectLines(t, mustRun(t, `
print(false && (1/0 == 0));
print(true || (1/0 == 0));
print(1 && 2);
print(0 || 0);
`), "0", "1", "1", "0")
}

func TestTypePromotionAndConcatenation(t *testing.T) {
	interp := New(Options{})
	sum, err := interp.Evaluate(ast.Bin("+", ast.Int(1), ast.Flt(2.5)))
	if err != nil || sum != (runtime.FloatValue{Val: 3.5}) {
		t.Fatalf("expected float 3.5, got %#v (%v)", sum, err)
	}
	concat, err := interp.Evaluate(ast.Bin("+", ast.Str("a"), ast.Int(1)))
	if err != nil || concat != (runtime.StringValue{Val: "a1"}) {
		t.Fatalf("expected \"a1\", got %#v (%v)", concat, err)
	}

	expectLines(t, mustRun(t, `
print(1 + 2.5);
print("a" + 1);
print(1 + "b");
print("x" + 'y');
print(3.0 * 2);
print('a' + 1);
print('a' == 'a');
print("ab" == "ab");
print("ab" != "ab");
`), "3.5", "a1", "1b", "xy", "6", "98", "1", "1", "0")
}

func TestFunctionParametersDoNotLeak(t *testing.T) {
	expectLines(t, mustRun(t, `
int x = 1;
ComeAndDo shadow(x) {
  x = 5;
  return x;
}
print(shadow(9));
print(x);
if (1) {
  x = 7;
}
print(x);
`), "5", "1", "7")
}

func TestAssignmentReachesCallerScopes(t *testing.T) {
	expectLines(t, mustRun(t, `
int counter = 0;
ComeAndDo bump() {
  counter = counter + 1;
}
bump();
bump();
print(counter);

ComeAndDo inner() {
  return y;
}
ComeAndDo outer() {
  int y = 7;
  return inner();
}
print(outer());
`), "2", "7")
}

func TestTypedDeclarationShadowsInCurrentFrame(t *testing.T) {
	expectLines(t, mustRun(t, `
int x = 1;
ComeAndDo local() {
  int x = 3;
  return x;
}
print(local());
print(x);
`), "3", "1")
}

func TestReturnUnwindsNestedBlocks(t *testing.T) {
	expectLines(t, mustRun(t, `
ComeAndDo fact(n) {
  if (n < 2) {
    return 1;
  }
  return n * fact(n - 1);
}
ComeAndDo firstOver(limit) {
  int i = 0;
  while (1) {
    for (int j = 0; j < 100; j = j + 1) {
      if (j * i > limit) {
        return j * i;
      }
    }
    i = i + 1;
  }
}
ComeAndDo nothing() {
  int z = 1;
}
print(fact(10));
print(firstOver(150));
print(nothing());
`), "3628800", "152", "0")
}

func TestLoops(t *testing.T) {
	expectLines(t, mustRun(t, `
int sum = 0;
for (int i = 0; i < 5; i = i + 1) {
  sum = sum + i;
}
print(sum);
int n = 3;
while (n > 0) {
  print(n);
  n = n - 1;
}
int k = 0;
for (; k < 2;) {
  k = k + 1;
}
print(k);
`), "10", "3", "2", "1", "2")
}

func TestElseIfChains(t *testing.T) {
	expectLines(t, mustRun(t, `
ComeAndDo classify(n) {
  if (n < 0) {
    return "negative";
  } else if (n == 0) {
    return "zero";
  } else {
    return "positive";
  }
}
print(classify(-3));
print(classify(0));
print(classify(8));
print(!0);
print(!5);
print(-'a');
`), "negative", "zero", "positive", "1", "0", "-97")
}

func TestDeclaredTypeCoercion(t *testing.T) {
	expectLines(t, mustRun(t, `
int i = 2.9;
float f = 3;
char c = 65;
bool b = 5;
int fromChar = 'a';
print(i);
print(f);
print(c);
print(b);
print(fromChar);
i = 7.8;
print(i);
f = 1;
print(f + 0.5);
print(true);
print(false);
int d;
string s;
print(d);
print(s + "|");
`), "2", "3", "A", "1", "97", "7", "1.5", "true", "false", "0", "|")
}

func TestUntypedBindingsTakeAssignedValue(t *testing.T) {
	expectLines(t, mustRun(t, `
ComeAndDo f(x) {
  x = 2.5;
  return x;
}
print(f(1));
y = 1;
y = 2.5;
print(y);
z = "hi";
z = 1;
print(z + 1);
int typed = 1;
ComeAndDo retype() {
  typed = 4.5;
  return typed;
}
print(retype());
print(typed);
`), "2.5", "2.5", "2", "4", "4")
}

func TestMethodFieldAssignmentKeepsFieldType(t *testing.T) {
	expectLines(t, mustRun(t, `
class Gauge {
  int level;
  ComeAndDo set(v) {
    level = v;
    return level;
  }
}
Gauge g;
print(g.set(3.9));
print(g.level);
`), "3", "3")

	_, err := runSource(t, `
class Label {
  string text;
  ComeAndDo clear() {
    text = 0;
  }
}
Label l;
l.clear();
`, Options{})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}

func TestStringsAreIndexable(t *testing.T) {
	expectLines(t, mustRun(t, `
string s = "hey";
print(s[1]);
print(s[0] == 'h');
`), "e", "1")
}

func TestArrays(t *testing.T) {
	expectLines(t, mustRun(t, `
int fixed[3];
fixed[1] = 4;
print(fixed);
int grow[] = {1, 2, 3};
grow[3] = 4;
print(grow);
print(grow[3]);
float fs[] = {1, 2};
print(fs[0] / 4);
char cs[2];
cs[0] = 'x';
print(cs[0]);
string words[] = {"a", "b"};
print(words[1] + words[0]);
int empty[];
empty[0] = 9;
print(empty);
ComeAndDo total(xs, n) {
  int acc = 0;
  for (int i = 0; i < n; i = i + 1) {
    acc = acc + xs[i];
  }
  return acc;
}
print(total(grow, 4));
ComeAndDo fill(xs) {
  xs[0] = 100;
}
fill(fixed);
print(fixed[0]);
`), "{0, 4, 0}", "{1, 2, 3, 4}", "4", "0.25", "x", "ba", "{9}", "10", "100")
}

func TestArrayLiteralInfersElementType(t *testing.T) {
	interp := New(Options{})
	val, err := interp.Evaluate(ast.Arr(ast.Int(1), ast.Flt(2.7), ast.Chr('A')))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	arr, ok := val.(*runtime.ArrayValue)
	if !ok {
		t.Fatalf("expected array, got %#v", val)
	}
	want := []runtime.Value{runtime.IntegerValue{Val: 1}, runtime.IntegerValue{Val: 2}, runtime.IntegerValue{Val: 65}}
	if arr.ElemType != runtime.TypeInt || !reflect.DeepEqual(arr.Elements, want) {
		t.Fatalf("unexpected array %#v", arr)
	}
}

func TestInheritanceOverridesMethods(t *testing.T) {
	expectLines(t, mustRun(t, `
class A {
  int count;
  ComeAndDo greet() {
    return 1;
  }
  ComeAndDo bump() {
    count = count + 1;
  }
}
class B : A {
  ComeAndDo greet() {
    return 2;
  }
}
B b;
A a;
print(b.greet());
print(a.greet());
b.bump();
b.bump();
a.bump();
print(b.count);
print(a.count);
b.count = 10;
print(b.count);
print(a.count);
`), "2", "1", "2", "1", "10", "1")
}

func TestConstructors(t *testing.T) {
	expectLines(t, mustRun(t, `
class Point {
  int x;
  int y;
  ComeAndDo init(a, b) {
    x = a;
    y = b;
  }
  ComeAndDo sum() {
    return x + y;
  }
  ComeAndDo move(dx) {
    x = x + dx;
    return x;
  }
}
class Counter {
  int value;
  ComeAndDo init() {
    value = 9;
  }
}
Point p(3, 4);
Counter c;
print(p.sum());
print(p.move(2));
print(p);
print(c.value);
`), "7", "5", "Point{x: 5, y: 4}", "9")
}

func TestObjectsInitializeBeforeStatements(t *testing.T) {
	expectLines(t, mustRun(t, `
print(late.v);
class Holder {
  int v;
  ComeAndDo init() {
    v = 3;
  }
}
Holder late;
`), "3")
}

func TestObjectArraysHoldIndependentInstances(t *testing.T) {
	expectLines(t, mustRun(t, `
class P {
  int x;
  ComeAndDo double() {
    x = x * 2;
    return x;
  }
}
P ps[2];
ps[0].x = 5;
print(ps[0].x);
print(ps[1].x);
print(ps[0].double());
print(ps[0].x);
`), "5", "0", "10", "10")
}

func TestNestedObjectFields(t *testing.T) {
	expectLines(t, mustRun(t, `
class Inner {
  int v;
}
class Outer {
  Inner inner;
  float ratio;
}
Outer o;
o.inner.v = 4;
o.ratio = 1;
print(o.inner.v);
print(o);
`), "4", "Outer{inner: Inner{v: 4}, ratio: 1}")
}

func TestRedeclaredFieldKeepsBasePosition(t *testing.T) {
	expectLines(t, mustRun(t, `
class Base {
  int a;
  int b;
}
class Derived : Base {
  float a;
  int c;
}
Derived d;
d.a = 2.5;
print(d);
`), "Derived{a: 2.5, b: 0, c: 0}")
}

func TestMethodParameterOverwritesField(t *testing.T) {
	expectLines(t, mustRun(t, `
class Box {
  int size;
  ComeAndDo resize(size) {
    return size;
  }
}
Box box;
print(box.resize(6));
print(box.size);
`), "6", "6")
}

func TestInputAndRead(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "n.txt", "  42 17\n")

	out, err := runSource(t, `
int a = input();
int b = input();
print(a + b);
print(read("n.txt") * 2);
`, Options{Stdin: strings.NewReader("3\n4"), BaseDir: dir})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	expectLines(t, splitOutputLines(out), "7", "84")
}

func TestRunWithDSLProgram(t *testing.T) {
	stmts := []ast.Statement{
		ast.Class("Acc", "", []ast.FieldDefinition{ast.Field("int", "total")},
			ast.Fn("add", []string{"n"},
				ast.Assign("total", ast.Bin("+", ast.ID("total"), ast.ID("n"))),
				ast.Ret(ast.ID("total")),
			),
		),
		ast.New("Acc", "acc"),
		ast.Fn("twice", []string{"v"}, ast.Ret(ast.Bin("*", ast.ID("v"), ast.Int(2)))),
		ast.Expr(ast.CallMethod(ast.ID("acc"), "add", ast.Call("twice", ast.Int(4)))),
		ast.Print(ast.Member(ast.ID("acc"), "total")),
	}
	var out bytes.Buffer
	interp := New(Options{Stdout: &out})
	if err := interp.Run(stmts); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "8\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	acc, ok := interp.Object("acc")
	if !ok || acc.Fields["total"] != (runtime.IntegerValue{Val: 8}) {
		t.Fatalf("unexpected object %#v", acc)
	}
	if _, ok := interp.Class("Acc"); !ok {
		t.Fatalf("expected class registered")
	}
}

func TestRegistriesAreInspectable(t *testing.T) {
	stmts, err := parser.ParseSource("main.tl", "int xs[] = {1, 2};\nint y = 3;", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	interp := New(Options{Stdout: &bytes.Buffer{}})
	if err := interp.Run(stmts); err != nil {
		t.Fatalf("run: %v", err)
	}
	arr, ok := interp.Array("xs")
	if !ok || arr.Len() != 2 || !arr.Growable {
		t.Fatalf("unexpected array %#v", arr)
	}
	y, ok := interp.GlobalEnvironment().Lookup("y")
	if !ok || y != (runtime.IntegerValue{Val: 3}) {
		t.Fatalf("unexpected y %#v", y)
	}
	if typeName, _ := interp.GlobalEnvironment().DeclaredType("y"); typeName != runtime.TypeInt {
		t.Fatalf("expected y declared int, got %q", typeName)
	}
}

func writeTestFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
